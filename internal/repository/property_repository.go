package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/database"
	"github.com/Vroy4298/land-tax-system/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PropertyRepository defines the interface for property data access.
// Every read and write is scoped to an owner; a record belonging to
// someone else behaves exactly like a missing one.
type PropertyRepository interface {
	// Create inserts a new record.
	Create(ctx context.Context, p *models.Property) error

	// FindByIDForOwner returns nil, nil when no such record is owned by ownerID.
	FindByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Property, error)

	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error)

	// UpdateAssessment rewrites the input and derived fields only. Owner and
	// payment columns are never touched. Returns false when nothing matched.
	UpdateAssessment(ctx context.Context, p *models.Property) (bool, error)

	// Delete removes the record. Returns false when nothing matched.
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)

	// MarkPaid moves a pending record to paid in a single conditional
	// statement. Returns nil, nil when the record is missing, not owned, or
	// no longer pending.
	MarkPaid(ctx context.Context, id, ownerID uuid.UUID, receiptID string, paidAt time.Time) (*models.Property, error)

	// SummaryByOwner aggregates counts and amounts per payment status.
	SummaryByOwner(ctx context.Context, ownerID uuid.UUID) (*models.PaymentSummary, error)
}

type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `
	id, owner_id, owner_name, owner_phone, owner_email, address,
	property_category, usage_mode, zone, built_up_area, construction_year,
	base_rate, zone_multiplier, usage_multiplier, age_factor,
	final_tax_amount, formula_version,
	payment_status, payment_date, receipt_id,
	created_at, updated_at`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.OwnerName,
		&p.OwnerPhone,
		&p.OwnerEmail,
		&p.Address,
		&p.PropertyCategory,
		&p.UsageMode,
		&p.Zone,
		&p.BuiltUpArea,
		&p.ConstructionYear,
		&p.BaseRate,
		&p.ZoneMultiplier,
		&p.UsageMultiplier,
		&p.AgeFactor,
		&p.FinalTaxAmount,
		&p.FormulaVersion,
		&p.PaymentStatus,
		&p.PaymentDate,
		&p.ReceiptID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts the record and fills server-side timestamps.
func (r *propertyRepository) Create(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (
			id, owner_id, owner_name, owner_phone, owner_email, address,
			property_category, usage_mode, zone, built_up_area, construction_year,
			base_rate, zone_multiplier, usage_multiplier, age_factor,
			final_tax_amount, formula_version, payment_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18
		)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.OwnerName, p.OwnerPhone, p.OwnerEmail, p.Address,
		p.PropertyCategory, p.UsageMode, p.Zone, p.BuiltUpArea, p.ConstructionYear,
		p.BaseRate, p.ZoneMultiplier, p.UsageMultiplier, p.AgeFactor,
		p.FinalTaxAmount, p.FormulaVersion, p.PaymentStatus,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert property %s: %w", p.ID, err)
	}
	return nil
}

func (r *propertyRepository) FindByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 AND owner_id = $2`

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %s: %w", id, err)
	}
	return p, nil
}

func (r *propertyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	results := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		results = append(results, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}
	return results, nil
}

func (r *propertyRepository) UpdateAssessment(ctx context.Context, p *models.Property) (bool, error) {
	query := `
		UPDATE properties SET
			owner_name = $3,
			owner_phone = $4,
			owner_email = $5,
			address = $6,
			property_category = $7,
			usage_mode = $8,
			zone = $9,
			built_up_area = $10,
			construction_year = $11,
			base_rate = $12,
			zone_multiplier = $13,
			usage_multiplier = $14,
			age_factor = $15,
			final_tax_amount = $16,
			formula_version = $17,
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.OwnerName, p.OwnerPhone, p.OwnerEmail, p.Address,
		p.PropertyCategory, p.UsageMode, p.Zone, p.BuiltUpArea, p.ConstructionYear,
		p.BaseRate, p.ZoneMultiplier, p.UsageMultiplier, p.AgeFactor,
		p.FinalTaxAmount, p.FormulaVersion,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update property %s: %w", p.ID, err)
	}
	return true, nil
}

func (r *propertyRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM properties WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete property %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkPaid writes receipt id, payment date and status together. The
// payment_status predicate makes the transition atomic: of two concurrent
// calls only one can match the pending row.
func (r *propertyRepository) MarkPaid(ctx context.Context, id, ownerID uuid.UUID, receiptID string, paidAt time.Time) (*models.Property, error) {
	query := `
		UPDATE properties SET
			payment_status = 'paid',
			receipt_id = $3,
			payment_date = $4,
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND payment_status = 'pending'
		RETURNING ` + propertyColumns

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id, ownerID, receiptID, paidAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark property %s paid: %w", id, err)
	}
	return p, nil
}

func (r *propertyRepository) SummaryByOwner(ctx context.Context, ownerID uuid.UUID) (*models.PaymentSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE payment_status = 'pending'),
			COUNT(*) FILTER (WHERE payment_status = 'paid'),
			COALESCE(SUM(final_tax_amount) FILTER (WHERE payment_status = 'pending'), 0)::BIGINT,
			COALESCE(SUM(final_tax_amount) FILTER (WHERE payment_status = 'paid'), 0)::BIGINT
		FROM properties
		WHERE owner_id = $1
	`

	var s models.PaymentSummary
	err := r.db.Pool.QueryRow(ctx, query, ownerID).Scan(
		&s.TotalProperties,
		&s.PendingCount,
		&s.PaidCount,
		&s.AmountDue,
		&s.AmountPaid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise properties for owner %s: %w", ownerID, err)
	}
	return &s, nil
}
