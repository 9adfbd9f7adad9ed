package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	"github.com/ShopStream-LLC/shopstream-app/internal/metrics"
)

// LivenessStore implements domain.LivenessStore on Redis. One string key per
// stream, unconditional last-write-wins. The TTL bounds how long a stream
// that never receives a terminating webhook can present a stale "live" flag.
type LivenessStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewLivenessStore(rdb *goredis.Client, ttl time.Duration) *LivenessStore {
	return &LivenessStore{rdb: rdb, ttl: ttl}
}

func livenessKey(streamID uuid.UUID) string {
	return fmt.Sprintf("stream:%s:state", streamID)
}

func (s *LivenessStore) Set(ctx context.Context, streamID uuid.UUID, state domain.LivenessState) error {
	err := s.rdb.Set(ctx, livenessKey(streamID), string(state), s.ttl).Err()
	metrics.LivenessOpsTotal.WithLabelValues("set", opStatus(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to set liveness state: %w", err)
	}
	return nil
}

func (s *LivenessStore) Get(ctx context.Context, streamID uuid.UUID) (domain.LivenessState, error) {
	value, err := s.rdb.Get(ctx, livenessKey(streamID)).Result()
	if errors.Is(err, goredis.Nil) {
		metrics.LivenessOpsTotal.WithLabelValues("get", "ok").Inc()
		return domain.LivenessUnknown, nil
	}
	metrics.LivenessOpsTotal.WithLabelValues("get", opStatus(err)).Inc()
	if err != nil {
		return domain.LivenessUnknown, fmt.Errorf("failed to get liveness state: %w", err)
	}
	return domain.LivenessState(value), nil
}

func (s *LivenessStore) Clear(ctx context.Context, streamID uuid.UUID) error {
	err := s.rdb.Del(ctx, livenessKey(streamID)).Err()
	metrics.LivenessOpsTotal.WithLabelValues("clear", opStatus(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to clear liveness state: %w", err)
	}
	return nil
}

func opStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
