package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/pkg/logger"
	"github.com/cylvision/dockwatch/pkg/metrics"
)

// RedisBus implements Publisher and Subscriber over Redis pub/sub, the
// transport the camera relay publishes on.
type RedisBus struct {
	client        *redis.Client
	batchChannel  string
	countsChannel string
	log           logger.Logger
}

// RedisOption applies a configuration option to the RedisBus.
type RedisOption func(*RedisBus)

// WithLogger sets a custom logger for the bus.
func WithLogger(l logger.Logger) RedisOption {
	return func(b *RedisBus) {
		if l != nil {
			b.log = l
		}
	}
}

// NewRedis connects to the broker at url and verifies the connection.
func NewRedis(ctx context.Context, url, batchChannel, countsChannel string, opts ...RedisOption) (*RedisBus, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	b := &RedisBus{
		client:        client,
		batchChannel:  batchChannel,
		countsChannel: countsChannel,
		log:           logger.Get().Named("bus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Publish pushes one realtime count onto the fan-out channel. Redis
// pub/sub is fire-and-forget: subscribers that are not listening right
// now simply miss the message.
func (b *RedisBus) Publish(ctx context.Context, c model.RealtimeCount) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode count: %w", err)
	}
	if err := b.client.Publish(ctx, b.countsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish count: %w", err)
	}
	return nil
}

// Batches subscribes to the inbound channel and streams decoded
// batches until ctx is cancelled. A payload that fails to decode is
// logged and skipped; frame processing is self-healing and never halts
// on one bad input.
func (b *RedisBus) Batches(ctx context.Context) (<-chan model.DetectionBatch, error) {
	sub := b.client.Subscribe(ctx, b.batchChannel)
	// Force the subscription onto the wire before we report success.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %q: %w", b.batchChannel, err)
	}

	out := make(chan model.DetectionBatch)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var batch model.DetectionBatch
				if err := json.Unmarshal([]byte(msg.Payload), &batch); err != nil {
					metrics.RecordDecodeError()
					b.log.Warn(ctx, "dropping malformed batch payload",
						logger.Error(fmt.Errorf("%w: %w", ErrDecode, err)))
					continue
				}
				if batch.Platform == "" {
					metrics.RecordDecodeError()
					b.log.Warn(ctx, "dropping batch without platform")
					continue
				}
				select {
				case out <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close releases the Redis connection.
func (b *RedisBus) Close() error {
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}
