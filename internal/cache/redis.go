package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusview/attendance-api/internal/models"
	"github.com/campusview/attendance-api/pkg/config"
)

// NewRedisClient returns a configured and pinged redis client.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Redis stores snapshots as JSON with a server-side TTL, so every instance
// behind a load balancer shares the same fetch budget against the portal.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis builds a redis-backed snapshot cache.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Get implements SnapshotCache. Backend failures degrade to a miss; the
// orchestrator will fetch from the portal instead.
func (r *Redis) Get(ctx context.Context, rollNumber string) (models.AttendanceSnapshot, bool) {
	raw, err := r.client.Get(ctx, key(rollNumber)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("snapshot cache get failed", zap.String("roll", rollNumber), zap.Error(err))
		}
		return models.AttendanceSnapshot{}, false
	}

	var snap models.AttendanceSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		r.logger.Warn("snapshot cache payload corrupt", zap.String("roll", rollNumber), zap.Error(err))
		return models.AttendanceSnapshot{}, false
	}
	return snap, true
}

// Put implements SnapshotCache.
func (r *Redis) Put(ctx context.Context, rollNumber string, snap models.AttendanceSnapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		r.logger.Warn("snapshot cache marshal failed", zap.String("roll", rollNumber), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, key(rollNumber), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("snapshot cache set failed", zap.String("roll", rollNumber), zap.Error(err))
	}
}

func key(rollNumber string) string {
	return "attendance:snapshot:" + rollNumber
}
