package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"fraudgate/internal/platform/config"
	"fraudgate/internal/platform/metrics"
	"fraudgate/internal/ruleset"

	"github.com/redis/go-redis/v9"
)

const redisRulesetKey = "fraudgate:ruleset"

// RedisStore fronts another Store with a shared Redis snapshot so that
// multiple gateway instances converge on the same ruleset between writes.
// Set deletes the snapshot before returning; cache failures fall back to the
// inner store rather than failing the read.
type RedisStore struct {
	inner   Store
	client  *redis.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRedis wraps inner with a Redis snapshot cache. Metrics may be nil.
func NewRedis(inner Store, client *redis.Client, logger *slog.Logger, m *metrics.Metrics) *RedisStore {
	return &RedisStore{inner: inner, client: client, logger: logger, metrics: m}
}

func (s *RedisStore) Get(ctx context.Context, field ruleset.Field) (string, error) {
	fields, err := s.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return fields[field], nil
}

func (s *RedisStore) GetAll(ctx context.Context) (map[ruleset.Field]string, error) {
	data, err := s.client.Get(ctx, redisRulesetKey).Bytes()
	if err == nil {
		var fields map[ruleset.Field]string
		if err := json.Unmarshal(data, &fields); err == nil {
			s.recordHit()
			return fields, nil
		}
		s.logger.Warn("discarding undecodable ruleset snapshot", "error", err)
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("ruleset snapshot read failed, falling back", "error", err)
	}
	s.recordMiss()

	fields, err := s.inner.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(fields); err == nil {
		if err := s.client.Set(ctx, redisRulesetKey, payload, config.RulesetCacheTTL).Err(); err != nil {
			s.logger.Warn("ruleset snapshot write failed", "error", err)
		}
	}
	return fields, nil
}

func (s *RedisStore) Set(ctx context.Context, field ruleset.Field, value string) error {
	if err := s.inner.Set(ctx, field, value); err != nil {
		return err
	}
	if err := s.client.Del(ctx, redisRulesetKey).Err(); err != nil {
		return fmt.Errorf("invalidate ruleset snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) recordHit() {
	if s.metrics != nil {
		s.metrics.RulesetCacheHits.Inc()
	}
}

func (s *RedisStore) recordMiss() {
	if s.metrics != nil {
		s.metrics.RulesetCacheMisses.Inc()
	}
}
