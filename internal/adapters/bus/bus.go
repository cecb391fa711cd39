// Package bus provides the realtime fan-out channel and the inbound
// batch subscription.
//
// The realtime channel and the durable event log are deliberately
// separate abstractions: the bus is ephemeral, at-most-once fan-out
// for live dashboards, while the log (package storage) is the durable
// source of truth. Conflating the two would conflate their guarantees.
package bus

import (
	"context"

	"github.com/cylvision/dockwatch/internal/domain/model"
)

// Publisher pushes realtime crossing counts to live subscribers.
// Delivery is best-effort: a failed publish is reported to the caller,
// who swallows and logs it.
type Publisher interface {
	Publish(ctx context.Context, c model.RealtimeCount) error
	Close() error
}

// Subscriber streams inbound detection batches. Malformed payloads are
// counted and skipped; the stream never stops on a bad input.
type Subscriber interface {
	// Batches returns the decoded batch stream. The channel closes
	// when ctx is cancelled or the subscription ends.
	Batches(ctx context.Context) (<-chan model.DetectionBatch, error)
	Close() error
}
