package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intake_backend/internal/assessment/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides Postgres access for assessment submissions.
type Repository struct {
	pool *pgxpool.Pool
}

var _ SubmissionStore = (*Repository)(nil)

// NewRepository creates a new submission repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const submissionColumns = `id, first_name, last_name, email, phone, company, project_unit_count,
	decision_timeline, construction_province, developer_type, government_programs,
	build_canada_eligible, COALESCE(project_description, ''), COALESCE(budget_range, ''),
	COALESCE(readiness, ''), source, client_tags, consent_marketing, consent_sms, age_verified,
	priority_score, score_breakdown, customer_tier, tags, submitted_at`

// Create inserts a submission.
func (r *Repository) Create(ctx context.Context, sub domain.Submission) error {
	breakdown, err := json.Marshal(sub.Breakdown)
	if err != nil {
		return fmt.Errorf("encode score breakdown: %w", err)
	}
	in := sub.Input
	_, err = r.pool.Exec(ctx, `
		INSERT INTO assessment_submissions (
			id, first_name, last_name, email, phone, company, project_unit_count,
			decision_timeline, construction_province, developer_type, government_programs,
			build_canada_eligible, project_description, budget_range, readiness, source, client_tags,
			consent_marketing, consent_sms, age_verified, priority_score, score_breakdown,
			customer_tier, tags, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), NULLIF($14, ''),
			NULLIF($15, ''), $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
	`, sub.ID, in.FirstName, in.LastName, in.Email, in.Phone, in.Company, in.ProjectUnitCount,
		in.DecisionTimeline, in.ConstructionProvince, in.DeveloperType, in.GovernmentPrograms,
		in.BuildCanadaEligible, in.ProjectDescription, in.BudgetRange, in.Readiness, in.Source, nonNil(in.ClientTags),
		in.ConsentMarketing, in.ConsentSMS, in.AgeVerified, sub.Score, breakdown,
		string(sub.Tier), nonNil(sub.Tags), sub.SubmittedAt)
	return err
}

// GetByID retrieves a submission by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Submission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM assessment_submissions WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, ErrNotFound
	}
	return sub, err
}

// ListByEmail retrieves submissions for an email address, newest first.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]domain.Submission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+submissionColumns+`
		FROM assessment_submissions
		WHERE lower(email) = lower($1)
		ORDER BY submitted_at DESC
		LIMIT 100
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var (
		sub       domain.Submission
		breakdown []byte
		tier      string
	)
	in := &sub.Input
	err := row.Scan(
		&sub.ID, &in.FirstName, &in.LastName, &in.Email, &in.Phone, &in.Company, &in.ProjectUnitCount,
		&in.DecisionTimeline, &in.ConstructionProvince, &in.DeveloperType, &in.GovernmentPrograms,
		&in.BuildCanadaEligible, &in.ProjectDescription, &in.BudgetRange,
		&in.Readiness, &in.Source, &in.ClientTags, &in.ConsentMarketing, &in.ConsentSMS, &in.AgeVerified,
		&sub.Score, &breakdown, &tier, &sub.Tags, &sub.SubmittedAt,
	)
	if err != nil {
		return domain.Submission{}, err
	}
	if err := json.Unmarshal(breakdown, &sub.Breakdown); err != nil {
		return domain.Submission{}, fmt.Errorf("decode score breakdown: %w", err)
	}
	sub.Tier = domain.Tier(tier)
	return sub, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// PostgresCooldownGuard stores cooldown records in assessment_ip_cooldowns.
// The primary key on ip_hash serializes concurrent claims.
type PostgresCooldownGuard struct {
	pool *pgxpool.Pool
}

var _ CooldownGuard = (*PostgresCooldownGuard)(nil)

// NewPostgresCooldownGuard creates a guard backed by pool.
func NewPostgresCooldownGuard(pool *pgxpool.Pool) *PostgresCooldownGuard {
	return &PostgresCooldownGuard{pool: pool}
}

func (g *PostgresCooldownGuard) Active(ctx context.Context, key string, now time.Time) (domain.CooldownRecord, bool, error) {
	rec, err := g.find(ctx, key, now)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CooldownRecord{}, false, nil
	}
	if err != nil {
		return domain.CooldownRecord{}, false, err
	}
	return rec, true, nil
}

func (g *PostgresCooldownGuard) Claim(ctx context.Context, key string, rec domain.CooldownRecord, ttl time.Duration) (domain.CooldownRecord, bool, error) {
	upsert := func() (bool, error) {
		var claimedID uuid.UUID
		err := g.pool.QueryRow(ctx, `
			INSERT INTO assessment_ip_cooldowns (ip_hash, submission_id, customer_tier, completed_at, expires_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (ip_hash) DO UPDATE
			SET submission_id = EXCLUDED.submission_id,
				customer_tier = EXCLUDED.customer_tier,
				completed_at = EXCLUDED.completed_at,
				expires_at = EXCLUDED.expires_at
			WHERE assessment_ip_cooldowns.expires_at <= EXCLUDED.completed_at
			RETURNING submission_id
		`, key, rec.SubmissionID, string(rec.Tier), rec.CompletedAt, rec.CompletedAt.Add(ttl)).Scan(&claimedID)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return err == nil, err
	}
	find := func() (domain.CooldownRecord, error) {
		return g.find(ctx, key, rec.CompletedAt)
	}
	return claimOrFind(rec, upsert, find)
}

// claimAttempts bounds how often a claim is retried when the blocking row
// disappears between the upsert and the lookup.
const claimAttempts = 2

// claimOrFind runs upsert and, when another record holds the key, returns
// that record. A holder that expired or was released in between is retried.
func claimOrFind(rec domain.CooldownRecord, upsert func() (bool, error), find func() (domain.CooldownRecord, error)) (domain.CooldownRecord, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= claimAttempts; attempt++ {
		claimed, err := upsert()
		if err != nil {
			return domain.CooldownRecord{}, false, err
		}
		if claimed {
			return rec, true, nil
		}

		existing, err := find()
		if errors.Is(err, pgx.ErrNoRows) {
			lastErr = err
			continue
		}
		if err != nil {
			return domain.CooldownRecord{}, false, err
		}
		return existing, false, nil
	}
	return domain.CooldownRecord{}, false, fmt.Errorf("claim cooldown: holder vanished %d times: %w", claimAttempts, lastErr)
}

func (g *PostgresCooldownGuard) Release(ctx context.Context, key string, submissionID uuid.UUID) error {
	_, err := g.pool.Exec(ctx, `
		DELETE FROM assessment_ip_cooldowns WHERE ip_hash = $1 AND submission_id = $2
	`, key, submissionID)
	return err
}

func (g *PostgresCooldownGuard) Sweep(ctx context.Context, now time.Time) (int, error) {
	tag, err := g.pool.Exec(ctx, `DELETE FROM assessment_ip_cooldowns WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (g *PostgresCooldownGuard) find(ctx context.Context, key string, now time.Time) (domain.CooldownRecord, error) {
	var (
		rec  domain.CooldownRecord
		tier string
	)
	err := g.pool.QueryRow(ctx, `
		SELECT submission_id, customer_tier, completed_at
		FROM assessment_ip_cooldowns
		WHERE ip_hash = $1 AND expires_at > $2
	`, key, now).Scan(&rec.SubmissionID, &tier, &rec.CompletedAt)
	rec.Tier = domain.Tier(tier)
	return rec, err
}
