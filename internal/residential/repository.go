package residential

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errDuplicateInquiry = errors.New("residential inquiry already exists")

// Store persists accepted inquiries.
type Store interface {
	Create(ctx context.Context, inq Inquiry) error
}

// Repository stores inquiries in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new residential repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts inq.
func (r *Repository) Create(ctx context.Context, inq Inquiry) error {
	req := inq.Request
	_, err := r.pool.Exec(ctx, `
		INSERT INTO residential_inquiries (
			id, first_name, last_name, email, phone, company, source, project_unit_count,
			construction_province, project_budget_range, housing_interest, questions_interests,
			residential_pathway, lead_type, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13, $14, $15
		)
	`, inq.ID, req.FirstName, req.LastName, req.Email, req.Phone, req.Company, req.Source, req.ProjectUnitCount,
		req.ConstructionProvince, req.ProjectBudgetRange, req.HousingInterest, req.QuestionsInterests,
		req.ResidentialPathway, req.LeadType, inq.SubmittedAt)
	return err
}

// MemoryStore keeps inquiries in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	inquiries map[uuid.UUID]Inquiry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{inquiries: make(map[uuid.UUID]Inquiry)}
}

func (s *MemoryStore) Create(_ context.Context, inq Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.inquiries[inq.ID]; exists {
		return errDuplicateInquiry
	}
	s.inquiries[inq.ID] = inq
	return nil
}

// Get returns the inquiry with id.
func (s *MemoryStore) Get(id uuid.UUID) (Inquiry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inq, ok := s.inquiries[id]
	return inq, ok
}
