// Package queue provides the bounded, platform-sharded batch queue
// between ingestion and the processing workers.
//
// Crossing detection compares a track's previous and current position,
// so batches for one platform must be applied in arrival order. The
// queue hashes each batch's platform to a fixed shard; every shard is
// a FIFO consumed by exactly one worker, which preserves per-platform
// order while letting platforms proceed independently.
package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultShardCount = 4
	defaultCapacity   = 10000
)

// Batch is the payload type flowing through the queue.
type Batch = model.DetectionBatch

// Queue provides non-blocking enqueue and per-shard channel dequeue.
type Queue interface {
	// Enqueue adds a batch to its platform's shard. Returns false when
	// the shard is full (backpressure) or the queue is closed.
	Enqueue(ctx context.Context, b Batch) bool

	// Shards returns the number of shards.
	Shards() int

	// Dequeue returns the receive channel for one shard. The channel
	// is closed when the queue is closed.
	Dequeue(shard int) <-chan Batch

	// Len returns the total number of queued batches.
	Len() int

	// Close shuts the queue down; no further enqueues are accepted.
	Close() error
}

// ShardedQueue implements Queue over buffered channels.
type ShardedQueue struct {
	shards   []chan Batch
	capacity int // per shard

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the ShardedQueue.
type Option func(*ShardedQueue)

// WithShardCount sets the number of platform shards.
func WithShardCount(n int) Option {
	return func(q *ShardedQueue) {
		if n > 0 {
			q.shards = make([]chan Batch, n)
		}
	}
}

// WithCapacity sets the total queue capacity, split evenly across
// shards.
func WithCapacity(n int) Option {
	return func(q *ShardedQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// NewShardedQueue creates a sharded queue with configuration options.
func NewShardedQueue(opts ...Option) *ShardedQueue {
	q := &ShardedQueue{
		shards:   make([]chan Batch, defaultShardCount),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	perShard := q.capacity / len(q.shards)
	if perShard < 1 {
		perShard = 1
	}
	for i := range q.shards {
		q.shards[i] = make(chan Batch, perShard)
	}

	metrics.UpdateQueueCapacity(perShard * len(q.shards))
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// shardFor maps a platform to its shard index.
func (q *ShardedQueue) shardFor(platform string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(platform))
	return int(h.Sum32() % uint32(len(q.shards)))
}

// Enqueue adds a batch to its platform's shard.
func (q *ShardedQueue) Enqueue(ctx context.Context, b Batch) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	shard := q.shards[q.shardFor(b.Platform)]
	select {
	case shard <- b:
		q.updateGauges()
		return true
	case <-ctx.Done():
		return false
	default:
		metrics.RecordBatchDropped()
		return false
	}
}

// Shards returns the shard count.
func (q *ShardedQueue) Shards() int { return len(q.shards) }

// Dequeue returns the receive side of one shard.
func (q *ShardedQueue) Dequeue(shard int) <-chan Batch {
	return q.shards[shard]
}

// Len returns the total number of queued batches.
func (q *ShardedQueue) Len() int {
	total := 0
	for _, s := range q.shards {
		total += len(s)
	}
	return total
}

// Close shuts down all shards.
func (q *ShardedQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	for _, s := range q.shards {
		close(s)
	}
	return nil
}

func (q *ShardedQueue) updateGauges() {
	size := q.Len()
	capacity := cap(q.shards[0]) * len(q.shards)
	metrics.UpdateQueueSize(size)
	if capacity > 0 {
		metrics.UpdateQueueUtilization(float64(size) / float64(capacity))
	}
}
