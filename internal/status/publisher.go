package status

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/screencraft/engine/pkg/logger"
)

// Publisher broadcasts progress events for in-flight generation runs.
// Delivery is best-effort: the engine never blocks or fails a run on a
// publish error.
type Publisher interface {
	Publish(ctx context.Context, channel, topic string, data any) error
}

// Event is the wire shape consumed by subscribers.
type Event struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

type redisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a Publisher backed by redis pub/sub.
func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Publish(ctx context.Context, channel, topic string, data any) error {
	b, err := json.Marshal(Event{Topic: topic, Data: data})
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, channel, b).Err(); err != nil {
		logger.L().Warn("status publish failed", zap.String("channel", channel), zap.String("topic", topic), zap.Error(err))
		return err
	}
	return nil
}

// RunChannel names the pub/sub channel for one generation run.
func RunChannel(runID string) string {
	return "run:" + runID
}
