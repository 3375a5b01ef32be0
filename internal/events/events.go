// Package events publishes pipeline notifications to Redis pub/sub so a
// dashboard can refresh without polling.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel names.
const (
	JobsDiscovered = "EVENT_JOBS_DISCOVERED"
	JobsScored     = "EVENT_JOBS_SCORED"
	StatusChanged  = "EVENT_STATUS_CHANGED"
	EmailSent      = "EVENT_EMAIL_SENT"
)

// Publisher sends one event. Publishing is best effort: implementations
// log failures instead of returning them.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload map[string]any)
}

// Redis publishes JSON payloads with PUBLISH.
type Redis struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedis returns a Publisher backed by rdb.
func NewRedis(rdb *redis.Client, log *zap.Logger) *Redis {
	return &Redis{rdb: rdb, log: log.Named("events")}
}

func (r *Redis) Publish(ctx context.Context, channel string, payload map[string]any) {
	msg := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["type"] = channel

	b, err := json.Marshal(msg)
	if err != nil {
		r.log.Warn("encode event failed", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := r.rdb.Publish(ctx, channel, b).Err(); err != nil {
		r.log.Warn("publish failed", zap.String("channel", channel), zap.Error(err))
	}
}

// Nop drops every event. Used when REDIS_URL is unset.
type Nop struct{}

func (Nop) Publish(context.Context, string, map[string]any) {}
