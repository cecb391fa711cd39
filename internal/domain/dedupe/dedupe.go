// Package dedupe tracks already-seen batch IDs so redelivered frames
// are processed at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50000

// Deduper records seen batch IDs. Batches without an ID bypass
// deduplication entirely; the pub/sub transport itself never
// redelivers, so IDs only matter for at-least-once upstream relays.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records
	// it if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an ID so the batch can be retried. Used when a
	// batch was marked seen but then rejected by queue backpressure.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of IDs currently remembered.
	Size() int
}

// ringDeduper keeps a bounded window of recent IDs. When the window is
// full the oldest ID is forgotten first; a frame replayed after that
// long is processed again, which the pipeline tolerates.
type ringDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	next int
	full bool
}

// Option applies a configuration option to the deduper.
type Option func(*ringDeduper)

// WithMaxSize bounds the number of remembered IDs.
func WithMaxSize(n int) Option {
	return func(d *ringDeduper) {
		if n > 0 {
			d.ring = make([]string, n)
		}
	}
}

// New creates a bounded deduper.
func New(opts ...Option) Deduper {
	d := &ringDeduper{
		seen: make(map[string]struct{}),
		ring: make([]string, defaultMaxSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if old := d.ring[d.next]; d.full && old != "" {
		delete(d.seen, old)
	}
	d.ring[d.next] = id
	d.next++
	if d.next == len(d.ring) {
		d.next = 0
		d.full = true
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i, v := range d.ring {
		if v == id {
			d.ring[i] = ""
			break
		}
	}
}

func (d *ringDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
