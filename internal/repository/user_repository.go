package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vroy4298/land-tax-system/internal/database"
	"github.com/Vroy4298/land-tax-system/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is returned when an account already uses the email.
var ErrDuplicateEmail = errors.New("email already registered")

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// UserRepository defines the interface for account data access.
type UserRepository interface {
	// Create inserts a user. Returns ErrDuplicateEmail on a taken email.
	Create(ctx context.Context, u *models.User) error

	// FindByEmail matches case-insensitively. Returns nil, nil when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userRepository struct {
	db *database.Database
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *database.Database) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, phone, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.Phone, u.PasswordHash).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = $1`

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user %s: %w", id, err)
	}
	return u, nil
}
