package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/VoHoang203/VibeMelodyBE/internal/config"
	"github.com/redis/go-redis/v9"
)

const brokerChannel = "vibemelody:realtime"

// Envelope is one event in flight between instances. An empty UserID
// means every connection.
type Envelope struct {
	UserID string          `json:"userId,omitempty"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// Broker fans envelopes out to every instance, including the publisher.
type Broker interface {
	Publish(ctx context.Context, env Envelope) error
	// Subscribe calls fn for each envelope until ctx ends or the
	// subscription fails.
	Subscribe(ctx context.Context, fn func(Envelope)) error
}

type RedisBroker struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBroker(ctx context.Context, cfg *config.Config) (*RedisBroker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBroker{rdb: rdb, channel: brokerChannel}, nil
}

func (b *RedisBroker) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, fn func(Envelope)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis subscription closed")
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			fn(env)
		}
	}
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}
