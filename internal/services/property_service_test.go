package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/assessment"
	"github.com/Vroy4298/land-tax-system/internal/logger"
	"github.com/Vroy4298/land-tax-system/internal/metrics"
	"github.com/Vroy4298/land-tax-system/internal/models"
	"github.com/Vroy4298/land-tax-system/internal/payment"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestPropertyService(repo *MockPropertyRepository) PropertyService {
	return NewPropertyService(
		repo,
		assessment.NewCalculator(fixedClock),
		payment.NewMachineWith(fixedClock, func() string { return "RCPT-test" }),
		nil,
		logger.New("test"),
	)
}

func scenarioInput() PropertyInput {
	return PropertyInput{
		OwnerName:  "Asha Rao",
		OwnerPhone: "9876543210",
		OwnerEmail: "asha@example.com",
		Address:    "12 Lake Road",
		Assessment: assessment.RawInput{
			PropertyType:     "Residential",
			UsageType:        "Self-Occupied",
			Zone:             "a",
			BuiltUpArea:      1000,
			ConstructionYear: 2001,
		},
	}
}

func TestCreate_PersistsPendingAssessment(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	owner := uuid.New()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Property")).Return(nil)

	// Act
	result, err := service.Create(ctx, owner, scenarioInput())

	// Assert
	require.NoError(t, err)
	p := result.Property
	assert.Equal(t, owner, p.OwnerID)
	assert.Equal(t, string(payment.StatusPending), p.PaymentStatus)
	assert.Nil(t, p.PaymentDate)
	assert.Nil(t, p.ReceiptID)
	assert.Equal(t, "residential", p.PropertyCategory)
	assert.Equal(t, "self", p.UsageMode)
	assert.Equal(t, "A", p.Zone)
	require.NotNil(t, p.ConstructionYear)
	assert.Equal(t, 2001, *p.ConstructionYear)
	assert.Equal(t, 0.8, p.AgeFactor)
	assert.Equal(t, int64(2600), p.FinalTaxAmount)
	assert.Equal(t, assessment.FormulaVersion, p.FormulaVersion)
	assert.Empty(t, result.Warnings)
	mockRepo.AssertExpectations(t)
}

func TestCreate_MissingYearStoredAsNull(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()

	in := scenarioInput()
	in.Assessment.ConstructionYear = nil
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Property")).Return(nil)

	result, err := service.Create(ctx, uuid.New(), in)

	require.NoError(t, err)
	assert.Nil(t, result.Property.ConstructionYear)
	assert.Equal(t, 1.0, result.Property.AgeFactor)
	assert.NotEmpty(t, result.Warnings)
}

func TestCreate_RepositoryError(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

	result, err := service.Create(ctx, uuid.New(), scenarioInput())

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to create property")
}

func TestGet_NotFound(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, owner := uuid.New(), uuid.New()

	// Repository returns nil, nil for missing or foreign records
	mockRepo.On("FindByIDForOwner", ctx, id, owner).Return(nil, nil)

	p, err := service.Get(ctx, owner, id)

	assert.ErrorIs(t, err, ErrPropertyNotFound)
	assert.Nil(t, p)
	mockRepo.AssertExpectations(t)
}

func TestUpdate_KeepsPaymentFields(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, owner := uuid.New(), uuid.New()

	receipt := "RCPT-earlier"
	paidAt := fixedNow.Add(-time.Hour)
	existing := &models.Property{
		ID:             id,
		OwnerID:        owner,
		PaymentStatus:  string(payment.StatusPaid),
		PaymentDate:    &paidAt,
		ReceiptID:      &receipt,
		FinalTaxAmount: 2600,
	}
	mockRepo.On("FindByIDForOwner", ctx, id, owner).Return(existing, nil)
	mockRepo.On("UpdateAssessment", ctx, existing).Return(true, nil)

	in := scenarioInput()
	in.Assessment.UsageType = "Rented"
	result, err := service.Update(ctx, owner, id, in)

	require.NoError(t, err)
	p := result.Property
	assert.Equal(t, int64(3120), p.FinalTaxAmount)
	assert.Equal(t, "rented", p.UsageMode)
	assert.Equal(t, string(payment.StatusPaid), p.PaymentStatus)
	assert.Equal(t, &receipt, p.ReceiptID)
	assert.Equal(t, owner, p.OwnerID)
	mockRepo.AssertExpectations(t)
}

func TestUpdate_DeletedConcurrently(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, owner := uuid.New(), uuid.New()

	mockRepo.On("FindByIDForOwner", ctx, id, owner).Return(&models.Property{ID: id, OwnerID: owner}, nil)
	mockRepo.On("UpdateAssessment", ctx, mock.Anything).Return(false, nil)

	result, err := service.Update(ctx, owner, id, scenarioInput())

	assert.ErrorIs(t, err, ErrPropertyNotFound)
	assert.Nil(t, result)
}

func TestDelete(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, owner, stranger := uuid.New(), uuid.New(), uuid.New()

	mockRepo.On("Delete", ctx, id, owner).Return(true, nil)
	mockRepo.On("Delete", ctx, id, stranger).Return(false, nil)

	assert.NoError(t, service.Delete(ctx, owner, id))
	assert.ErrorIs(t, service.Delete(ctx, stranger, id), ErrPropertyNotFound)
	mockRepo.AssertExpectations(t)
}

func TestPay_Success(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, owner := uuid.New(), uuid.New()

	pending := &models.Property{ID: id, OwnerID: owner, PaymentStatus: "pending", FinalTaxAmount: 2600}
	receipt := "RCPT-test"
	paid := &models.Property{ID: id, OwnerID: owner, PaymentStatus: "paid", FinalTaxAmount: 2600, ReceiptID: &receipt}

	mockRepo.On("FindByIDForOwner", ctx, id, owner).Return(pending, nil)
	mockRepo.On("MarkPaid", ctx, id, owner, "RCPT-test", fixedNow).Return(paid, nil)

	got, err := service.Pay(ctx, owner, id)

	require.NoError(t, err)
	assert.Equal(t, "RCPT-test", got.ReceiptID)
	assert.Equal(t, int64(2600), got.Amount)
	assert.Equal(t, fixedNow, got.PaymentDate)
	assert.Equal(t, id, got.PropertyID)
	mockRepo.AssertExpectations(t)
}

func TestPay_AlreadyPaid(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, owner := uuid.New(), uuid.New()

	mockRepo.On("FindByIDForOwner", ctx, id, owner).
		Return(&models.Property{ID: id, OwnerID: owner, PaymentStatus: "paid"}, nil)

	got, err := service.Pay(ctx, owner, id)

	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Nil(t, got)
	mockRepo.AssertNotCalled(t, "MarkPaid")
}

func TestPay_NotOwned(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, stranger := uuid.New(), uuid.New()

	mockRepo.On("FindByIDForOwner", ctx, id, stranger).Return(nil, nil)

	got, err := service.Pay(ctx, stranger, id)

	assert.ErrorIs(t, err, ErrPropertyNotFound)
	assert.Nil(t, got)
	mockRepo.AssertNotCalled(t, "MarkPaid")
}

func TestPay_LostConditionalUpdate(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, owner := uuid.New(), uuid.New()

	mockRepo.On("FindByIDForOwner", ctx, id, owner).
		Return(&models.Property{ID: id, OwnerID: owner, PaymentStatus: "pending"}, nil).Once()
	mockRepo.On("MarkPaid", ctx, id, owner, mock.Anything, mock.Anything).Return(nil, nil)
	mockRepo.On("FindByIDForOwner", ctx, id, owner).
		Return(&models.Property{ID: id, OwnerID: owner, PaymentStatus: "paid"}, nil).Once()

	got, err := service.Pay(ctx, owner, id)

	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Nil(t, got)
	mockRepo.AssertExpectations(t)
}

func TestPay_DeletedBeforeWrite(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)
	ctx := context.Background()
	id, owner := uuid.New(), uuid.New()

	mockRepo.On("FindByIDForOwner", ctx, id, owner).
		Return(&models.Property{ID: id, OwnerID: owner, PaymentStatus: "pending"}, nil).Once()
	mockRepo.On("MarkPaid", ctx, id, owner, mock.Anything, mock.Anything).Return(nil, nil)
	mockRepo.On("FindByIDForOwner", ctx, id, owner).Return(nil, nil).Once()

	got, err := service.Pay(ctx, owner, id)

	assert.ErrorIs(t, err, ErrPropertyNotFound)
	assert.Nil(t, got)
	mockRepo.AssertExpectations(t)
}

func TestPay_WrappedErrorsCountedByOutcome(t *testing.T) {
	m := metrics.New()
	service := &propertyService{metrics: m}

	service.observePaymentError(fmt.Errorf("pay: %w", ErrAlreadyPaid))
	service.observePaymentError(fmt.Errorf("pay: %w", ErrPropertyNotFound))
	service.observePaymentError(errors.New("boom"))

	expected := `
# HELP landtax_payments_total Payment attempts, by outcome.
# TYPE landtax_payments_total counter
landtax_payments_total{outcome="conflict"} 1
landtax_payments_total{outcome="error"} 1
landtax_payments_total{outcome="not_found"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "landtax_payments_total"))
}

func TestPay_ConcurrentRequestsSingleWinner(t *testing.T) {
	repo := newMemoryPropertyRepository()
	m := metrics.New()
	service := NewPropertyService(repo, assessment.NewCalculator(fixedClock), payment.NewMachine(), m, logger.New("test"))
	ctx := context.Background()
	owner := uuid.New()

	created, err := service.Create(ctx, owner, scenarioInput())
	require.NoError(t, err)

	const payers = 2
	var barrier sync.WaitGroup
	barrier.Add(payers)
	repo.readBarrier = &barrier
	repo.barrierReads = payers

	var wg sync.WaitGroup
	results := make(chan error, payers)
	for i := 0; i < payers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Pay(ctx, owner, created.Property.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyPaid):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	expected := `
# HELP landtax_amount_collected_total Sum of tax amounts marked paid.
# TYPE landtax_amount_collected_total counter
landtax_amount_collected_total 2600
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "landtax_amount_collected_total"))
}

func TestSummary(t *testing.T) {
	repo := newMemoryPropertyRepository()
	service := NewPropertyService(repo, assessment.NewCalculator(fixedClock), payment.NewMachine(), nil, logger.New("test"))
	ctx := context.Background()
	owner := uuid.New()

	first, err := service.Create(ctx, owner, scenarioInput())
	require.NoError(t, err)
	_, err = service.Create(ctx, owner, scenarioInput())
	require.NoError(t, err)
	_, err = service.Create(ctx, uuid.New(), scenarioInput())
	require.NoError(t, err)

	_, err = service.Pay(ctx, owner, first.Property.ID)
	require.NoError(t, err)

	summary, err := service.Summary(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, &models.PaymentSummary{
		TotalProperties: 2,
		PendingCount:    1,
		PaidCount:       1,
		AmountDue:       2600,
		AmountPaid:      2600,
	}, summary)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := newTestPropertyService(mockRepo)

	got := service.Preview(scenarioInput().Assessment)

	assert.Equal(t, int64(2600), got.FinalTaxAmount)
	assert.Equal(t, 2026, got.CurrentYear)
	mockRepo.AssertNotCalled(t, "Create")
}
