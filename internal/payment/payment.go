// Package payment governs the pending to paid transition of a property's tax.
package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is a property's payment state.
type Status string

// Payment states. Paid is terminal.
const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// ReceiptPrefix tags every receipt identifier.
const ReceiptPrefix = "RCPT-"

var (
	// ErrNotFound is returned when the record does not exist or belongs to
	// another user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("property not found")
	// ErrAlreadyPaid is returned when the record is no longer pending,
	// including when a concurrent payment won the conditional write.
	ErrAlreadyPaid = errors.New("property tax already paid")
)

// Snapshot is the state of a record as loaded just before payment.
type Snapshot struct {
	PropertyID     uuid.UUID
	OwnerID        uuid.UUID
	Status         Status
	FinalTaxAmount int64
}

// Receipt describes a completed transition.
type Receipt struct {
	PropertyID  uuid.UUID `json:"propertyId"`
	ReceiptID   string    `json:"receiptId"`
	PaymentDate time.Time `json:"paymentDate"`
	Amount      int64     `json:"amount"`
}

// Machine decides payment transitions. It does not persist anything; the
// caller writes the receipt with a conditional update on StatusPending.
type Machine struct {
	now       func() time.Time
	receiptID func() string
}

// NewMachine returns a Machine using the wall clock and NewReceiptID.
func NewMachine() *Machine {
	return &Machine{now: time.Now, receiptID: NewReceiptID}
}

// NewMachineWith returns a Machine with injected clock and id source.
func NewMachineWith(now func() time.Time, receiptID func() string) *Machine {
	return &Machine{now: now, receiptID: receiptID}
}

// Pay checks ownership and state and issues a receipt for the amount
// already on the record. The amount is never recomputed.
func (m *Machine) Pay(snap *Snapshot, requester uuid.UUID) (*Receipt, error) {
	if snap == nil || snap.OwnerID != requester {
		return nil, ErrNotFound
	}
	if snap.Status != StatusPending {
		return nil, ErrAlreadyPaid
	}

	return &Receipt{
		PropertyID:  snap.PropertyID,
		ReceiptID:   m.receiptID(),
		PaymentDate: m.now().UTC(),
		Amount:      snap.FinalTaxAmount,
	}, nil
}

// NewReceiptID returns a prefixed, time-ordered identifier.
func NewReceiptID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ReceiptPrefix + id.String()
}
