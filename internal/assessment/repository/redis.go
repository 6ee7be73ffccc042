package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intake_backend/internal/assessment/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "assessment:cooldown:"

// releaseScript deletes the key only while it still holds the given submission.
var releaseScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then return 0 end
local rec = cjson.decode(raw)
if rec["submissionId"] == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCooldownGuard keeps cooldown records as Redis keys with a TTL, so a
// cooldown is shared by every API instance and expires on its own.
type RedisCooldownGuard struct {
	rdb redis.UniversalClient
}

var _ CooldownGuard = (*RedisCooldownGuard)(nil)

// NewRedisCooldownGuard creates a guard on top of an existing client.
func NewRedisCooldownGuard(rdb redis.UniversalClient) *RedisCooldownGuard {
	return &RedisCooldownGuard{rdb: rdb}
}

func (g *RedisCooldownGuard) Active(ctx context.Context, key string, _ time.Time) (domain.CooldownRecord, bool, error) {
	raw, err := g.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CooldownRecord{}, false, nil
	}
	if err != nil {
		return domain.CooldownRecord{}, false, err
	}
	var rec domain.CooldownRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.CooldownRecord{}, false, fmt.Errorf("decode cooldown record: %w", err)
	}
	return rec, true, nil
}

func (g *RedisCooldownGuard) Claim(ctx context.Context, key string, rec domain.CooldownRecord, ttl time.Duration) (domain.CooldownRecord, bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return domain.CooldownRecord{}, false, fmt.Errorf("encode cooldown record: %w", err)
	}
	ok, err := g.rdb.SetNX(ctx, redisKeyPrefix+key, raw, ttl).Result()
	if err != nil {
		return domain.CooldownRecord{}, false, err
	}
	if ok {
		return rec, true, nil
	}

	existing, active, err := g.Active(ctx, key, rec.CompletedAt)
	if err != nil {
		return domain.CooldownRecord{}, false, err
	}
	if !active {
		// Expired between SETNX and GET.
		return g.Claim(ctx, key, rec, ttl)
	}
	return existing, false, nil
}

func (g *RedisCooldownGuard) Release(ctx context.Context, key string, submissionID uuid.UUID) error {
	err := releaseScript.Run(ctx, g.rdb, []string{redisKeyPrefix + key}, submissionID.String()).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Sweep is a no-op: Redis expires keys itself.
func (g *RedisCooldownGuard) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
