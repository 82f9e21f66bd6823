package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)

func newTestMachine() *Machine {
	return NewMachineWith(func() time.Time { return fixedNow }, func() string { return "RCPT-test" })
}

func TestPay_PendingRecord(t *testing.T) {
	owner := uuid.New()
	snap := &Snapshot{PropertyID: uuid.New(), OwnerID: owner, Status: StatusPending, FinalTaxAmount: 2600}

	receipt, err := newTestMachine().Pay(snap, owner)

	require.NoError(t, err)
	assert.Equal(t, snap.PropertyID, receipt.PropertyID)
	assert.Equal(t, "RCPT-test", receipt.ReceiptID)
	assert.Equal(t, fixedNow, receipt.PaymentDate)
	assert.Equal(t, int64(2600), receipt.Amount)
	assert.Equal(t, StatusPending, snap.Status, "snapshot must not be mutated")
}

func TestPay_OtherOwnerIsNotFound(t *testing.T) {
	snap := &Snapshot{PropertyID: uuid.New(), OwnerID: uuid.New(), Status: StatusPending, FinalTaxAmount: 100}

	receipt, err := newTestMachine().Pay(snap, uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, receipt)
}

func TestPay_MissingRecordIsNotFound(t *testing.T) {
	receipt, err := newTestMachine().Pay(nil, uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, receipt)
}

func TestPay_AlreadyPaid(t *testing.T) {
	owner := uuid.New()
	snap := &Snapshot{PropertyID: uuid.New(), OwnerID: owner, Status: StatusPaid, FinalTaxAmount: 100}

	receipt, err := newTestMachine().Pay(snap, owner)

	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Nil(t, receipt)
}

func TestNewReceiptID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewReceiptID()
		require.True(t, strings.HasPrefix(id, ReceiptPrefix))
		_, err := uuid.Parse(strings.TrimPrefix(id, ReceiptPrefix))
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate receipt id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewMachine_UsesWallClock(t *testing.T) {
	owner := uuid.New()
	before := time.Now().UTC()

	receipt, err := NewMachine().Pay(&Snapshot{OwnerID: owner, Status: StatusPending}, owner)

	require.NoError(t, err)
	assert.False(t, receipt.PaymentDate.Before(before.Add(-time.Second)))
	assert.True(t, strings.HasPrefix(receipt.ReceiptID, ReceiptPrefix))
}
