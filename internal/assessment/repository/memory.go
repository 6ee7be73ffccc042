package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"intake_backend/internal/assessment/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps submissions in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu          sync.RWMutex
	submissions map[uuid.UUID]domain.Submission
}

var _ SubmissionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory submission store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{submissions: make(map[uuid.UUID]domain.Submission)}
}

// Create stores sub. An existing ID is never overwritten.
func (s *MemoryStore) Create(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.submissions[sub.ID]; exists {
		return errDuplicateID
	}
	sub.Tags = slices.Clone(sub.Tags)
	s.submissions[sub.ID] = sub
	return nil
}

// GetByID returns the submission with id.
func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[id]
	if !ok {
		return domain.Submission{}, ErrNotFound
	}
	sub.Tags = slices.Clone(sub.Tags)
	return sub, nil
}

// ListByEmail returns submissions for email, newest first.
func (s *MemoryStore) ListByEmail(_ context.Context, email string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Submission
	for _, sub := range s.submissions {
		if strings.EqualFold(sub.Input.Email, email) {
			sub.Tags = slices.Clone(sub.Tags)
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b domain.Submission) int {
		return b.SubmittedAt.Compare(a.SubmittedAt)
	})
	return out, nil
}

type cooldownEntry struct {
	record    domain.CooldownRecord
	expiresAt time.Time
}

// MemoryCooldownGuard keeps cooldown records in process memory. Expired
// entries are ignored on read and removed by Sweep.
type MemoryCooldownGuard struct {
	mu      sync.Mutex
	entries map[string]cooldownEntry
}

var _ CooldownGuard = (*MemoryCooldownGuard)(nil)

// NewMemoryCooldownGuard creates an empty in-memory guard.
func NewMemoryCooldownGuard() *MemoryCooldownGuard {
	return &MemoryCooldownGuard{entries: make(map[string]cooldownEntry)}
}

func (g *MemoryCooldownGuard) Active(_ context.Context, key string, now time.Time) (domain.CooldownRecord, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.entries[key]
	if !ok || !now.Before(entry.expiresAt) {
		return domain.CooldownRecord{}, false, nil
	}
	return entry.record, true, nil
}

func (g *MemoryCooldownGuard) Claim(_ context.Context, key string, rec domain.CooldownRecord, ttl time.Duration) (domain.CooldownRecord, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if entry, ok := g.entries[key]; ok && rec.CompletedAt.Before(entry.expiresAt) {
		return entry.record, false, nil
	}
	g.entries[key] = cooldownEntry{record: rec, expiresAt: rec.CompletedAt.Add(ttl)}
	return rec, true, nil
}

func (g *MemoryCooldownGuard) Release(_ context.Context, key string, submissionID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if entry, ok := g.entries[key]; ok && entry.record.SubmissionID == submissionID {
		delete(g.entries, key)
	}
	return nil
}

func (g *MemoryCooldownGuard) Sweep(_ context.Context, now time.Time) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	removed := 0
	for key, entry := range g.entries {
		if !now.Before(entry.expiresAt) {
			delete(g.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored cooldown entries, expired or not.
func (g *MemoryCooldownGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
