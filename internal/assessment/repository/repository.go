// Package repository stores accepted submissions and the per-IP cooldown
// records. Each contract has an in-memory, a Postgres and (for the cooldown
// guard) a Redis implementation.
package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"intake_backend/internal/assessment/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// ErrNotFound is returned when a submission does not exist.
var ErrNotFound = errors.New("submission not found")

var errDuplicateID = errors.New("submission id already exists")

// SubmissionStore persists accepted submissions. Records are immutable once created.
type SubmissionStore interface {
	Create(ctx context.Context, sub domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Submission, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Submission, error)
}

// CooldownGuard enforces at most one accepted submission per client IP per
// cooldown window. Keys are IP hashes produced by IPKey, never raw addresses.
type CooldownGuard interface {
	// Active returns the live record for key, if any.
	Active(ctx context.Context, key string, now time.Time) (domain.CooldownRecord, bool, error)
	// Claim atomically stores rec for key unless a live record exists, in
	// which case the existing record is returned with claimed == false.
	Claim(ctx context.Context, key string, rec domain.CooldownRecord, ttl time.Duration) (existing domain.CooldownRecord, claimed bool, err error)
	// Release drops the claim for key if it still belongs to submissionID.
	Release(ctx context.Context, key string, submissionID uuid.UUID) error
	// Sweep removes expired records and reports how many were dropped.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// IPKey derives the cooldown key for a normalized client IP.
func IPKey(ip string) string {
	sum := blake2b.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}
