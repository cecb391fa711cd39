// Package emitter turns detected crossings into events: one realtime
// publish and one durable append per crossing.
package emitter

import (
	"context"
	"time"

	"github.com/cylvision/dockwatch/internal/adapters/bus"
	"github.com/cylvision/dockwatch/internal/domain/direction"
	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/pkg/logger"
	"github.com/cylvision/dockwatch/pkg/metrics"
)

// Appender is the durable side of the emitter: the append-only event
// log.
type Appender interface {
	Append(ctx context.Context, e model.CrossingEvent) error
}

// Emitter constructs crossing events and performs the two independent
// side effects. Both are fail-open: a storage or broker hiccup must
// degrade reporting freshness, never halt live tracking, so failures
// are logged and swallowed.
type Emitter struct {
	pub bus.Publisher
	log Appender

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Emitter.
type Option func(*Emitter)

// WithNow injects a clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(e *Emitter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets a custom logger for the emitter.
func WithLogger(l logger.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an emitter over the given fan-out channel and log.
func New(pub bus.Publisher, log Appender, opts ...Option) *Emitter {
	e := &Emitter{
		pub:    pub,
		log:    log,
		now:    time.Now,
		logger: logger.Get().Named("emitter"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit records one crossing of zone on platform. Publish and persist
// are attempted independently; one failing never prevents the other.
func (e *Emitter) Emit(ctx context.Context, platform, zone string, dir direction.Direction) model.CrossingEvent {
	event := model.CrossingEvent{
		Platform:  platform,
		Zone:      zone,
		Direction: string(dir),
		Qty:       1,
		Timestamp: e.now().UTC(),
	}
	metrics.RecordCrossing(platform, zone, string(dir))

	if err := e.pub.Publish(ctx, model.RealtimeCount{
		Platform:  event.Platform,
		Zone:      event.Zone,
		Direction: event.Direction,
		Qty:       event.Qty,
	}); err != nil {
		metrics.RecordPublishError()
		e.logger.Warn(ctx, "realtime publish failed",
			logger.String("platform", platform),
			logger.String("zone", zone),
			logger.Error(err),
		)
	}

	if err := e.log.Append(ctx, event); err != nil {
		metrics.RecordPersistError()
		e.logger.Error(ctx, "event append failed",
			logger.String("platform", platform),
			logger.String("zone", zone),
			logger.Error(err),
		)
	} else {
		metrics.RecordEventAppended()
	}

	return event
}
