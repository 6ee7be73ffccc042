package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"intake_backend/internal/assessment/domain"
	"intake_backend/migrations"
	"intake_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestClaimOrFind_RetriesWhenHolderVanishes(t *testing.T) {
	rec := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierPioneer, CompletedAt: time.Now()}
	upserts := 0
	upsert := func() (bool, error) {
		upserts++
		return upserts == 2, nil
	}
	find := func() (domain.CooldownRecord, error) {
		return domain.CooldownRecord{}, pgx.ErrNoRows
	}

	got, claimed, err := claimOrFind(rec, upsert, find)
	if err != nil || !claimed {
		t.Fatalf("expected retry to claim, claimed=%v err=%v", claimed, err)
	}
	if got.SubmissionID != rec.SubmissionID || upserts != 2 {
		t.Fatalf("unexpected result %+v after %d upserts", got, upserts)
	}
}

func TestClaimOrFind_ReturnsHolder(t *testing.T) {
	holder := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierElite}
	got, claimed, err := claimOrFind(domain.CooldownRecord{SubmissionID: uuid.New()},
		func() (bool, error) { return false, nil },
		func() (domain.CooldownRecord, error) { return holder, nil },
	)
	if err != nil || claimed || got.SubmissionID != holder.SubmissionID {
		t.Fatalf("expected existing holder, got %+v claimed=%v err=%v", got, claimed, err)
	}
}

func TestClaimOrFind_GivesUpAfterRepeatedMisses(t *testing.T) {
	_, claimed, err := claimOrFind(domain.CooldownRecord{},
		func() (bool, error) { return false, nil },
		func() (domain.CooldownRecord, error) { return domain.CooldownRecord{}, pgx.ErrNoRows },
	)
	if claimed || !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected wrapped ErrNoRows, claimed=%v err=%v", claimed, err)
	}
}

func TestClaimOrFind_PropagatesUpsertError(t *testing.T) {
	boom := errors.New("connection refused")
	_, _, err := claimOrFind(domain.CooldownRecord{},
		func() (bool, error) { return false, boom },
		func() (domain.CooldownRecord, error) {
			t.Fatalf("find must not run")
			return domain.CooldownRecord{}, nil
		},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected upsert error, got %v", err)
	}
}

type databaseURL string

func (u databaseURL) GetDatabaseURL() string { return string(u) }

// newTestPool connects to TEST_DATABASE_URL with migrations applied, or skips.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := db.RunMigrations(databaseURL(url), migrations.FS, "."); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := db.NewPool(context.Background(), databaseURL(url))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestRepository_CreateGetAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestPool(t))
	email := uuid.NewString() + "@example.com"
	base := time.Now().UTC().Truncate(time.Second)

	older := newSubmission(email, base.Add(-time.Hour))
	newer := newSubmission(email, base)
	newer.Input.ProjectDescription = "Mid-rise rental"
	newer.Input.ClientTags = []string{"spring-expo"}
	for _, sub := range []domain.Submission{older, newer} {
		if err := repo.Create(ctx, sub); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, newer.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Tier != domain.TierPreferred || got.Score != 40 || got.Input.ProjectDescription != "Mid-rise rental" {
		t.Fatalf("unexpected submission %+v", got)
	}
	if len(got.Input.ClientTags) != 1 || !got.SubmittedAt.Equal(base) {
		t.Fatalf("unexpected stored tags or time %+v", got)
	}
	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := repo.ListByEmail(ctx, strings.ToUpper(email))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %d submissions", len(list))
	}
}

func TestPostgresCooldownGuard_Lifecycle(t *testing.T) {
	ctx := context.Background()
	guard := NewPostgresCooldownGuard(newTestPool(t))
	key := IPKey(uuid.NewString())
	base := time.Now().UTC().Truncate(time.Second)
	ttl := time.Minute

	first := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierElite, CompletedAt: base}
	if _, claimed, err := guard.Claim(ctx, key, first, ttl); err != nil || !claimed {
		t.Fatalf("expected first claim, claimed=%v err=%v", claimed, err)
	}

	second := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierPioneer, CompletedAt: base.Add(30 * time.Second)}
	existing, claimed, err := guard.Claim(ctx, key, second, ttl)
	if err != nil || claimed || existing.SubmissionID != first.SubmissionID || existing.Tier != domain.TierElite {
		t.Fatalf("expected refusal with holder, got %+v claimed=%v err=%v", existing, claimed, err)
	}

	if _, active, err := guard.Active(ctx, key, base.Add(30*time.Second)); err != nil || !active {
		t.Fatalf("expected active cooldown, active=%v err=%v", active, err)
	}

	// An expired row is taken over in place by the upsert.
	third := domain.CooldownRecord{SubmissionID: uuid.New(), Tier: domain.TierPreferred, CompletedAt: base.Add(2 * ttl)}
	if _, claimed, err := guard.Claim(ctx, key, third, ttl); err != nil || !claimed {
		t.Fatalf("expected claim over expired row, claimed=%v err=%v", claimed, err)
	}

	if err := guard.Release(ctx, key, first.SubmissionID); err != nil {
		t.Fatalf("release stale: %v", err)
	}
	if rec, active, _ := guard.Active(ctx, key, third.CompletedAt); !active || rec.SubmissionID != third.SubmissionID {
		t.Fatalf("release of a stale claim must not drop the current one")
	}

	removed, err := guard.Sweep(ctx, base.Add(10*ttl))
	if err != nil || removed < 1 {
		t.Fatalf("expected sweep to remove the expired row, removed=%d err=%v", removed, err)
	}
	if _, active, _ := guard.Active(ctx, key, base.Add(2*ttl)); active {
		t.Fatalf("expected row gone after sweep")
	}
}
