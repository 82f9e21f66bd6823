package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vroy4298/land-tax-system/internal/assessment"
	"github.com/Vroy4298/land-tax-system/internal/logger"
	"github.com/Vroy4298/land-tax-system/internal/metrics"
	"github.com/Vroy4298/land-tax-system/internal/models"
	"github.com/Vroy4298/land-tax-system/internal/payment"
	"github.com/Vroy4298/land-tax-system/internal/repository"
	"github.com/google/uuid"
)

// Service-level errors
var (
	// ErrPropertyNotFound covers both missing records and records owned by
	// someone else.
	ErrPropertyNotFound = payment.ErrNotFound
	// ErrAlreadyPaid is returned when paying a record that is no longer pending.
	ErrAlreadyPaid = payment.ErrAlreadyPaid
)

// PropertyInput is a submitted property form.
type PropertyInput struct {
	OwnerName  string
	OwnerPhone string
	OwnerEmail string
	Address    string
	Assessment assessment.RawInput
}

// PropertyResult is a stored record together with the assessment warnings
// produced while writing it.
type PropertyResult struct {
	Property *models.Property
	Warnings []string
}

// PropertyService defines the property business operations.
type PropertyService interface {
	// Preview computes an assessment without storing anything.
	Preview(raw assessment.RawInput) assessment.Assessment

	// Create assesses the input and stores a new pending record.
	Create(ctx context.Context, ownerID uuid.UUID, in PropertyInput) (*PropertyResult, error)

	// List returns the owner's records, newest first.
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error)

	// Get returns ErrPropertyNotFound for missing or foreign records.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Property, error)

	// Update reassesses the record from new input. Owner and payment
	// fields are preserved.
	Update(ctx context.Context, ownerID, id uuid.UUID, in PropertyInput) (*PropertyResult, error)

	// Delete removes the record.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// Pay moves a pending record to paid and returns its receipt.
	Pay(ctx context.Context, ownerID, id uuid.UUID) (*payment.Receipt, error)

	// Summary aggregates the owner's payment totals.
	Summary(ctx context.Context, ownerID uuid.UUID) (*models.PaymentSummary, error)
}

type propertyService struct {
	repo     repository.PropertyRepository
	calc     *assessment.Calculator
	payments *payment.Machine
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
// m may be nil when metrics are not collected.
func NewPropertyService(
	repo repository.PropertyRepository,
	calc *assessment.Calculator,
	payments *payment.Machine,
	m *metrics.Metrics,
	log *logger.Logger,
) PropertyService {
	return &propertyService{
		repo:     repo,
		calc:     calc,
		payments: payments,
		metrics:  m,
		log:      log,
	}
}

func (s *propertyService) Preview(raw assessment.RawInput) assessment.Assessment {
	a := s.calc.Compute(raw)
	s.metrics.ObserveAssessment(metrics.SourcePreview, a.FinalTaxAmount, a.Fields.DefaultedFields())
	return a
}

// applyAssessment copies the form and every derived field onto p. It is the
// only place derived fields are written.
func applyAssessment(p *models.Property, in PropertyInput, a assessment.Assessment) {
	p.OwnerName = in.OwnerName
	p.OwnerPhone = in.OwnerPhone
	p.OwnerEmail = in.OwnerEmail
	p.Address = in.Address

	p.PropertyCategory = string(a.Fields.Category.Value)
	p.UsageMode = string(a.Fields.Usage.Value)
	p.Zone = a.Fields.Zone.Value
	p.BuiltUpArea = a.Breakdown.Area
	p.ConstructionYear = nil
	if !a.Fields.ConstructionYear.Defaulted {
		year := a.Fields.ConstructionYear.Value
		p.ConstructionYear = &year
	}

	p.BaseRate = a.Breakdown.BaseRate
	p.ZoneMultiplier = a.Breakdown.ZoneMultiplier
	p.UsageMultiplier = a.Breakdown.UsageMultiplier
	p.AgeFactor = a.Breakdown.AgeFactor
	p.FinalTaxAmount = a.FinalTaxAmount
	p.FormulaVersion = a.FormulaVersion
}

func (s *propertyService) Create(ctx context.Context, ownerID uuid.UUID, in PropertyInput) (*PropertyResult, error) {
	a := s.calc.Compute(in.Assessment)

	p := &models.Property{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		PaymentStatus: string(payment.StatusPending),
	}
	applyAssessment(p, in, a)

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("Failed to create property", err, map[string]interface{}{
			"owner_id": ownerID.String(),
		})
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.metrics.ObserveAssessment(metrics.SourceCreate, a.FinalTaxAmount, a.Fields.DefaultedFields())
	s.log.Info("Property created", map[string]interface{}{
		"property_id":      p.ID.String(),
		"owner_id":         ownerID.String(),
		"final_tax_amount": p.FinalTaxAmount,
		"defaulted_fields": a.Fields.DefaultedFields(),
	})

	return &PropertyResult{Property: p, Warnings: a.Warnings}, nil
}

func (s *propertyService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	props, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error("Failed to list properties", err, map[string]interface{}{
			"owner_id": ownerID.String(),
		})
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

func (s *propertyService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Property, error) {
	p, err := s.repo.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	return p, nil
}

func (s *propertyService) Update(ctx context.Context, ownerID, id uuid.UUID, in PropertyInput) (*PropertyResult, error) {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	a := s.calc.Compute(in.Assessment)
	applyAssessment(p, in, a)

	updated, err := s.repo.UpdateAssessment(ctx, p)
	if err != nil {
		s.log.Error("Failed to update property", err, map[string]interface{}{
			"property_id": id.String(),
		})
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	// Deleted between the read and the write.
	if !updated {
		return nil, ErrPropertyNotFound
	}

	s.metrics.ObserveAssessment(metrics.SourceUpdate, a.FinalTaxAmount, a.Fields.DefaultedFields())
	s.log.Info("Property reassessed", map[string]interface{}{
		"property_id":      id.String(),
		"final_tax_amount": p.FinalTaxAmount,
		"payment_status":   p.PaymentStatus,
	})

	return &PropertyResult{Property: p, Warnings: a.Warnings}, nil
}

func (s *propertyService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if !deleted {
		return ErrPropertyNotFound
	}

	s.log.Info("Property deleted", map[string]interface{}{
		"property_id": id.String(),
		"owner_id":    ownerID.String(),
	})
	return nil
}

// Pay loads the record, lets the payment machine decide the transition and
// writes it with a conditional update. When the update matches nothing the
// record is read again: a record that has since been deleted yields
// ErrPropertyNotFound, one paid by another request yields ErrAlreadyPaid.
func (s *propertyService) Pay(ctx context.Context, ownerID, id uuid.UUID) (*payment.Receipt, error) {
	current, err := s.repo.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		s.metrics.ObservePayment(metrics.OutcomeError, 0)
		return nil, fmt.Errorf("failed to load property for payment: %w", err)
	}

	var snap *payment.Snapshot
	if current != nil {
		snap = &payment.Snapshot{
			PropertyID:     current.ID,
			OwnerID:        current.OwnerID,
			Status:         payment.Status(current.PaymentStatus),
			FinalTaxAmount: current.FinalTaxAmount,
		}
	}

	receipt, err := s.payments.Pay(snap, ownerID)
	if err != nil {
		s.observePaymentError(err)
		s.log.Warn("Payment rejected", map[string]interface{}{
			"property_id": id.String(),
			"reason":      err.Error(),
		})
		return nil, err
	}

	paid, err := s.repo.MarkPaid(ctx, id, ownerID, receipt.ReceiptID, receipt.PaymentDate)
	if err != nil {
		s.metrics.ObservePayment(metrics.OutcomeError, 0)
		s.log.Error("Failed to record payment", err, map[string]interface{}{
			"property_id": id.String(),
		})
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if paid == nil {
		err := s.lostPaymentError(ctx, ownerID, id)
		s.observePaymentError(err)
		s.log.Warn("Payment lost conditional update", map[string]interface{}{
			"property_id": id.String(),
			"reason":      err.Error(),
		})
		return nil, err
	}

	receipt.Amount = paid.FinalTaxAmount
	s.metrics.ObservePayment(metrics.OutcomePaid, receipt.Amount)
	s.log.Info("Property tax paid", map[string]interface{}{
		"property_id": id.String(),
		"receipt_id":  receipt.ReceiptID,
		"amount":      receipt.Amount,
	})

	return receipt, nil
}

// lostPaymentError explains why a conditional payment update matched no row.
func (s *propertyService) lostPaymentError(ctx context.Context, ownerID, id uuid.UUID) error {
	current, err := s.repo.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to reload property after payment: %w", err)
	}
	if current == nil {
		return ErrPropertyNotFound
	}
	return ErrAlreadyPaid
}

func (s *propertyService) observePaymentError(err error) {
	switch {
	case errors.Is(err, ErrAlreadyPaid):
		s.metrics.ObservePayment(metrics.OutcomeConflict, 0)
	case errors.Is(err, ErrPropertyNotFound):
		s.metrics.ObservePayment(metrics.OutcomeNotFound, 0)
	default:
		s.metrics.ObservePayment(metrics.OutcomeError, 0)
	}
}

func (s *propertyService) Summary(ctx context.Context, ownerID uuid.UUID) (*models.PaymentSummary, error) {
	summary, err := s.repo.SummaryByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise properties: %w", err)
	}
	return summary, nil
}
