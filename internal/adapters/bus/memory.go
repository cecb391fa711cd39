package bus

import (
	"context"
	"sync"

	"github.com/cylvision/dockwatch/internal/domain/model"
)

// MemoryBus is an in-process Publisher and Subscriber used by tests
// and single-process deployments without a broker.
type MemoryBus struct {
	mu       sync.Mutex
	counts   []model.RealtimeCount
	inbound  chan model.DetectionBatch
	closed   bool
	countsCh chan model.RealtimeCount
}

// NewMemory creates a memory bus with a small inbound buffer.
func NewMemory() *MemoryBus {
	return &MemoryBus{
		inbound:  make(chan model.DetectionBatch, 256),
		countsCh: make(chan model.RealtimeCount, 256),
	}
}

// Publish records the count and offers it to any live listener.
func (b *MemoryBus) Publish(_ context.Context, c model.RealtimeCount) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.counts = append(b.counts, c)
	b.mu.Unlock()

	select {
	case b.countsCh <- c:
	default: // best-effort, like the real fan-out
	}
	return nil
}

// Counts returns a snapshot of everything published so far.
func (b *MemoryBus) Counts() []model.RealtimeCount {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.RealtimeCount, len(b.counts))
	copy(out, b.counts)
	return out
}

// Inject feeds a batch into the inbound stream.
func (b *MemoryBus) Inject(batch model.DetectionBatch) {
	b.inbound <- batch
}

// Batches returns the inbound stream.
func (b *MemoryBus) Batches(ctx context.Context) (<-chan model.DetectionBatch, error) {
	out := make(chan model.DetectionBatch)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-b.inbound:
				if !ok {
					return
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

// Close shuts the bus down.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.inbound)
	}
	return nil
}
