package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"intake_backend/internal/assessment/domain"

	"github.com/google/uuid"
)

func newSubmission(email string, at time.Time) domain.Submission {
	return domain.Submission{
		ID:          uuid.New(),
		Input:       domain.AssessmentInput{Email: email, FirstName: "Ada"},
		Score:       40,
		Tier:        domain.TierPreferred,
		Tags:        []string{"tier-preferred"},
		SubmittedAt: at,
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sub := newSubmission("ada@example.com", time.Now())

	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, sub); err == nil {
		t.Fatalf("expected duplicate id to be rejected")
	}

	got, err := store.GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != sub.ID || got.Tier != domain.TierPreferred {
		t.Fatalf("unexpected submission %+v", got)
	}

	got.Tags[0] = "mutated"
	again, _ := store.GetByID(ctx, sub.ID)
	if again.Tags[0] != "tier-preferred" {
		t.Fatalf("stored submission was mutated through a returned copy")
	}

	if _, err := store.GetByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListByEmailNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	older := newSubmission("ada@example.com", base)
	newer := newSubmission("ADA@example.com", base.Add(time.Hour))
	other := newSubmission("bob@example.com", base)
	for _, sub := range []domain.Submission{older, newer, other} {
		if err := store.Create(ctx, sub); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := store.ListByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Fatalf("unexpected listing %+v", got)
	}
}

func TestMemoryStore_ConcurrentCreatesKeepDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Create(ctx, newSubmission("load@example.com", time.Now())); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.ListByEmail(ctx, "load@example.com")
	if len(got) != 50 {
		t.Fatalf("expected 50 submissions, got %d", len(got))
	}
}

func TestMemoryCooldownGuard_ClaimAndExpiry(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryCooldownGuard()
	key := IPKey("203.0.113.7")
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	first := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierElite, CompletedAt: now}
	if _, claimed, err := guard.Claim(ctx, key, first, 24*time.Hour); err != nil || !claimed {
		t.Fatalf("expected first claim to succeed, claimed=%v err=%v", claimed, err)
	}

	second := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierPioneer, CompletedAt: now.Add(time.Hour)}
	existing, claimed, err := guard.Claim(ctx, key, second, 24*time.Hour)
	if err != nil || claimed {
		t.Fatalf("expected second claim to be refused, claimed=%v err=%v", claimed, err)
	}
	if existing.SubmissionID != first.SubmissionID || existing.Tier != domain.TierElite {
		t.Fatalf("expected the original record, got %+v", existing)
	}

	later := now.Add(25 * time.Hour)
	if _, active, _ := guard.Active(ctx, key, later); active {
		t.Fatalf("expected cooldown to have expired")
	}
	third := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierPioneer, CompletedAt: later}
	if _, claimed, _ := guard.Claim(ctx, key, third, 24*time.Hour); !claimed {
		t.Fatalf("expected claim after expiry to succeed")
	}
}

func TestMemoryCooldownGuard_ConcurrentClaimsSingleWinner(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryCooldownGuard()
	key := IPKey("198.51.100.1")
	now := time.Now()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierPioneer, CompletedAt: now}
			if _, claimed, _ := guard.Claim(ctx, key, rec, time.Hour); claimed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", wins)
	}
}

func TestMemoryCooldownGuard_ReleaseOnlyOwnClaim(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryCooldownGuard()
	key := IPKey("192.0.2.10")
	rec := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierPioneer, CompletedAt: time.Now()}
	guard.Claim(ctx, key, rec, time.Hour)

	_ = guard.Release(ctx, key, uuid.New())
	if guard.Len() != 1 {
		t.Fatalf("release with a foreign submission id must not drop the claim")
	}
	_ = guard.Release(ctx, key, rec.SubmissionID)
	if guard.Len() != 0 {
		t.Fatalf("expected claim to be released")
	}
}

func TestMemoryCooldownGuard_Sweep(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryCooldownGuard()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	guard.Claim(ctx, IPKey("a"), domain.CooldownRecord{SubmissionID: uuid.New(), CompletedAt: now}, time.Hour)
	guard.Claim(ctx, IPKey("b"), domain.CooldownRecord{SubmissionID: uuid.New(), CompletedAt: now.Add(2 * time.Hour)}, time.Hour)

	removed, err := guard.Sweep(ctx, now.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 || guard.Len() != 1 {
		t.Fatalf("expected one entry swept and one kept, removed=%d len=%d", removed, guard.Len())
	}
}

func TestIPKey_HidesRawAddress(t *testing.T) {
	key := IPKey("203.0.113.7")
	if len(key) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(key))
	}
	if key == "203.0.113.7" || key != IPKey("203.0.113.7") {
		t.Fatalf("expected a stable digest distinct from the input")
	}
	if key == IPKey("203.0.113.8") {
		t.Fatalf("expected distinct keys for distinct addresses")
	}
}
