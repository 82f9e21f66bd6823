package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is one taxable property owned by a user.
// Derived fields are written only from an assessment and payment fields
// only by a payment transition. Nullable columns use pointers.
type Property struct {
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	PaymentDate      *time.Time `json:"paymentDate"`
	ReceiptID        *string    `json:"receiptId"`
	ConstructionYear *int       `json:"constructionYear"`
	OwnerName        string     `json:"ownerName"`
	OwnerPhone       string     `json:"ownerPhone"`
	OwnerEmail       string     `json:"ownerEmail"`
	Address          string     `json:"address"`
	PropertyCategory string     `json:"propertyCategory"`
	UsageMode        string     `json:"usageMode"`
	Zone             string     `json:"zone"`
	FormulaVersion   string     `json:"formulaVersion"`
	PaymentStatus    string     `json:"paymentStatus"`
	BuiltUpArea      float64    `json:"builtUpArea"`
	BaseRate         float64    `json:"baseRate"`
	ZoneMultiplier   float64    `json:"zoneMultiplier"`
	UsageMultiplier  float64    `json:"usageMultiplier"`
	AgeFactor        float64    `json:"ageFactor"`
	FinalTaxAmount   int64      `json:"finalTaxAmount"`
	ID               uuid.UUID  `json:"id"`
	OwnerID          uuid.UUID  `json:"owner"`
}

// TableName returns the table backing Property.
func (Property) TableName() string {
	return "properties"
}

// PaymentSummary aggregates an owner's records for the dashboard.
type PaymentSummary struct {
	TotalProperties int   `json:"totalProperties"`
	PendingCount    int   `json:"pendingCount"`
	PaidCount       int   `json:"paidCount"`
	AmountDue       int64 `json:"amountDue"`
	AmountPaid      int64 `json:"amountPaid"`
}
