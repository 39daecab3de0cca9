package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	onlineUsersKey     = "online_users"
	TemplateChannelFmt = "template:%s"
	TemplateChannelAll = "template:*"
)

type RedisService struct {
	client *redis.Client
}

func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{
		client: client,
	}
}

// =============================================================================
// User Status Management
// =============================================================================

func (r *RedisService) SetUserOnline(ctx context.Context, userID string) error {
	key := fmt.Sprintf("user:%s:status", userID)
	pipe := r.client.Pipeline()

	pipe.SAdd(ctx, onlineUsersKey, userID)
	pipe.HSet(ctx, key, map[string]interface{}{
		"status":     "online",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, 5*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to set user online", "userID", userID, "error", err)
		return err
	}

	slog.Debug("User set to online", "userID", userID)
	return nil
}

func (r *RedisService) SetUserOffline(ctx context.Context, userID string) error {
	key := fmt.Sprintf("user:%s:status", userID)
	pipe := r.client.Pipeline()

	pipe.SRem(ctx, onlineUsersKey, userID)
	pipe.HSet(ctx, key, map[string]interface{}{
		"status":     "offline",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, 24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to set user offline", "userID", userID, "error", err)
		return err
	}

	slog.Debug("User set to offline", "userID", userID)
	return nil
}

func (r *RedisService) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, onlineUsersKey).Result()
}

// =============================================================================
// PubSub Operations
// =============================================================================

// PublishTemplateEvent publishes an already encoded frame to the template's bus channel.
func (r *RedisService) PublishTemplateEvent(ctx context.Context, templateID string, frame []byte) error {
	channel := fmt.Sprintf(TemplateChannelFmt, templateID)
	if err := r.client.Publish(ctx, channel, frame).Err(); err != nil {
		slog.Error("Failed to publish template event", "templateID", templateID, "error", err)
		return err
	}

	slog.Debug("Published template event", "templateID", templateID)
	return nil
}

func (r *RedisService) PSubscribe(ctx context.Context, patterns ...string) *redis.PubSub {
	pubsub := r.client.PSubscribe(ctx, patterns...)
	slog.Debug("Pattern subscribed to channels", "patterns", patterns)
	return pubsub
}

// =============================================================================
// Rate Limiting
// =============================================================================

// CheckRateLimit records a hit in a sliding window and reports whether the caller is still under limit.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	card := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return card.Val() < int64(limit), nil
}

// =============================================================================
// Migration State Management
// =============================================================================

func (r *RedisService) SetMigrationState(ctx context.Context, version string, status string) error {
	return r.client.HSet(ctx, "db:migration:status", map[string]interface{}{
		"version":    version,
		"status":     status,
		"updated_at": time.Now().Unix(),
	}).Err()
}

// GetMigrationState returns the last recorded version and status; empty when none was recorded.
func (r *RedisService) GetMigrationState(ctx context.Context) (map[string]string, error) {
	return r.client.HGetAll(ctx, "db:migration:status").Result()
}

// =============================================================================
// Cache Operations
// =============================================================================

func (r *RedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// Get decodes the cached value into dest. A miss returns redis.Nil.
func (r *RedisService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisService) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
