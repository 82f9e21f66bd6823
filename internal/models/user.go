package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	ID           uuid.UUID `json:"id"`
}

// TableName returns the table backing User.
func (User) TableName() string {
	return "users"
}
