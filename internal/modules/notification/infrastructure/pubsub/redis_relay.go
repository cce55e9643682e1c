package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel carries push messages between the processes that emit
// notifications and the ones holding websocket connections.
const DefaultChannel = "fms:notifications:push"

type envelope struct {
	UserID  int64           `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay publishes push messages on a Redis channel and forwards them to
// a local deliverer on the subscribing side.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisRelay(rdb *redis.Client, channel string, logger *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRelay{rdb: rdb, channel: channel, logger: logger.With("component", "push_relay")}
}

// Publish sends payload, a JSON document, for userID.
func (r *RedisRelay) Publish(ctx context.Context, userID int64, payload []byte) error {
	body, err := json.Marshal(envelope{UserID: userID, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode push for user %d: %w", userID, err)
	}
	if err := r.rdb.Publish(ctx, r.channel, body).Err(); err != nil {
		return fmt.Errorf("publish push for user %d: %w", userID, err)
	}
	return nil
}

// Subscribe returns once the subscription is confirmed and then calls deliver
// for every message until ctx is done.
func (r *RedisRelay) Subscribe(ctx context.Context, deliver func(userID int64, payload []byte)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.Debug("push relay subscribed", "channel", r.channel)

	messages := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil || env.UserID <= 0 {
					r.logger.Warn("dropping malformed push message", "error", err)
					continue
				}
				deliver(env.UserID, env.Payload)
			}
		}
	}()
	return nil
}
