package services

import (
	"context"
	"sync"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/models"
	"github.com/Vroy4298/land-tax-system/internal/payment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, p *models.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPropertyRepository) FindByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyRepository) UpdateAssessment(ctx context.Context, p *models.Property) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) MarkPaid(ctx context.Context, id, ownerID uuid.UUID, receiptID string, paidAt time.Time) (*models.Property, error) {
	args := m.Called(ctx, id, ownerID, receiptID, paidAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) SummaryByOwner(ctx context.Context, ownerID uuid.UUID) (*models.PaymentSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSummary), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// memoryPropertyRepository keeps records in memory and applies MarkPaid
// with the same pending-only condition as the SQL implementation. When
// readBarrier is set, the first barrierReads calls to FindByIDForOwner wait
// on it so concurrent payers all observe the pending state before anyone
// writes.
type memoryPropertyRepository struct {
	mu           sync.Mutex
	records      map[uuid.UUID]models.Property
	readBarrier  *sync.WaitGroup
	barrierReads int
}

func newMemoryPropertyRepository() *memoryPropertyRepository {
	return &memoryPropertyRepository{records: make(map[uuid.UUID]models.Property)}
}

func (r *memoryPropertyRepository) Create(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.records[p.ID] = *p
	return nil
}

func (r *memoryPropertyRepository) FindByIDForOwner(_ context.Context, id, ownerID uuid.UUID) (*models.Property, error) {
	r.mu.Lock()
	p, ok := r.records[id]
	wait := r.readBarrier != nil && r.barrierReads > 0
	if wait {
		r.barrierReads--
	}
	r.mu.Unlock()

	if wait {
		r.readBarrier.Done()
		r.readBarrier.Wait()
	}

	if !ok || p.OwnerID != ownerID {
		return nil, nil
	}
	return &p, nil
}

func (r *memoryPropertyRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Property
	for _, p := range r.records {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPropertyRepository) UpdateAssessment(_ context.Context, p *models.Property) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.records[p.ID]
	if !ok || current.OwnerID != p.OwnerID {
		return false, nil
	}
	next := *p
	next.PaymentStatus = current.PaymentStatus
	next.PaymentDate = current.PaymentDate
	next.ReceiptID = current.ReceiptID
	r.records[p.ID] = next
	return true, nil
}

func (r *memoryPropertyRepository) Delete(_ context.Context, id, ownerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

func (r *memoryPropertyRepository) MarkPaid(_ context.Context, id, ownerID uuid.UUID, receiptID string, paidAt time.Time) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[id]
	if !ok || p.OwnerID != ownerID || p.PaymentStatus != string(payment.StatusPending) {
		return nil, nil
	}
	p.PaymentStatus = string(payment.StatusPaid)
	p.PaymentDate = &paidAt
	p.ReceiptID = &receiptID
	r.records[id] = p
	return &p, nil
}

func (r *memoryPropertyRepository) SummaryByOwner(_ context.Context, ownerID uuid.UUID) (*models.PaymentSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &models.PaymentSummary{}
	for _, p := range r.records {
		if p.OwnerID != ownerID {
			continue
		}
		s.TotalProperties++
		if p.PaymentStatus == string(payment.StatusPaid) {
			s.PaidCount++
			s.AmountPaid += p.FinalTaxAmount
		} else {
			s.PendingCount++
			s.AmountDue += p.FinalTaxAmount
		}
	}
	return s, nil
}
