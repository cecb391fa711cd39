// Package worker runs the crossing-detection pipeline over queued
// detection batches.
package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/cylvision/dockwatch/internal/adapters/mq/queue"
	"github.com/cylvision/dockwatch/internal/adapters/storage"
	"github.com/cylvision/dockwatch/internal/domain/direction"
	"github.com/cylvision/dockwatch/internal/domain/geometry"
	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/internal/domain/tracking"
	"github.com/cylvision/dockwatch/pkg/logger"
	"github.com/cylvision/dockwatch/pkg/metrics"
)

const workerShutdownTimeout = 5 * time.Second

// Batch is what workers read off the queue.
type Batch = model.DetectionBatch

// Emitter records one detected crossing.
type Emitter interface {
	Emit(ctx context.Context, platform, zone string, dir direction.Direction) model.CrossingEvent
}

// ZoneSource resolves a platform's configured zones when a batch does
// not carry them inline.
type ZoneSource interface {
	Zones(ctx context.Context, platform string) (map[string]model.Zone, error)
}

// Worker consumes one queue shard. Because a platform always hashes to
// the same shard, one worker sees all of a platform's batches in
// arrival order; no other worker touches that platform.
type Worker struct {
	shard   <-chan Batch
	tracker tracking.Store
	zones   ZoneSource
	emitter Emitter

	minTravel float64
	name      string
	done      chan struct{}
	logger    logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
			w.logger = logger.Get().Named(name)
		}
	}
}

// WithMinTravel overrides the jitter threshold in pixels.
func WithMinTravel(px float64) Option {
	return func(w *Worker) {
		if px > 0 {
			w.minTravel = px
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker over one queue shard.
func NewWorker(shard <-chan Batch, tracker tracking.Store, zones ZoneSource, em Emitter, opts ...Option) *Worker {
	w := &Worker{
		shard:     shard,
		tracker:   tracker,
		zones:     zones,
		emitter:   em,
		minTravel: geometry.DefaultMinTravel,
		name:      "worker",
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes the shard until it closes or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-w.shard:
			if !ok {
				return
			}
			w.processBatch(ctx, batch)
		}
	}
}

// processBatch applies one frame's detections to the track store and
// evaluates every zone for every moved track. Errors are recovered
// here; a bad batch never stops the loop.
func (w *Worker) processBatch(ctx context.Context, batch Batch) {
	start := time.Now()
	defer func() {
		metrics.RecordBatchLatency(time.Since(start).Seconds())
	}()

	// A long-idle platform's reference points are stale; drop them
	// before comparing anything against this batch.
	if w.tracker.MaybeExpire(ctx, batch.Platform) {
		metrics.RecordTrackExpiry()
		w.logger.Info(ctx, "track state expired",
			logger.String("platform", batch.Platform),
		)
	}

	if len(batch.Detections) == 0 {
		metrics.RecordEmptyBatch()
		w.tracker.Touch(ctx, batch.Platform)
		return
	}

	zones := w.resolveZones(ctx, batch)

	for _, det := range batch.Detections {
		cur := det.Centroid()
		prev, ok := w.tracker.Update(ctx, batch.Platform, det.TrackID, cur)
		if !ok {
			// First sighting: record only, no crossing test.
			continue
		}
		// Every zone is evaluated independently; one movement may
		// cross several boundaries at once.
		for zoneID, z := range zones {
			dir, crossed := geometry.DetectCrossing(prev, cur, z, w.minTravel)
			if !crossed {
				continue
			}
			w.emitter.Emit(ctx, batch.Platform, zoneID, dir)
		}
	}

	w.tracker.Touch(ctx, batch.Platform)
}

// resolveZones prefers inline zones from the batch, falling back to
// the stored configuration. Zones with invalid identifiers or
// degenerate segments are skipped.
func (w *Worker) resolveZones(ctx context.Context, batch Batch) map[string]model.Zone {
	zones := batch.Zones
	if len(zones) == 0 {
		stored, err := w.zones.Zones(ctx, batch.Platform)
		if err != nil {
			w.logger.Warn(ctx, "zone lookup failed",
				logger.String("platform", batch.Platform),
				logger.Error(err),
			)
			return nil
		}
		zones = stored
	}

	valid := make(map[string]model.Zone, len(zones))
	for id, z := range zones {
		if storage.ValidateZoneID(id) != nil || !geometry.ValidSegment(z) {
			w.logger.Debug(ctx, "skipping invalid zone",
				logger.String("platform", batch.Platform),
				logger.String("zone", id),
			)
			continue
		}
		valid[id] = z
	}
	return valid
}

// Pool runs one worker per queue shard.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates workers for every shard of q.
func NewPool(q queue.Queue, tracker tracking.Store, zones ZoneSource, em Emitter, opts ...Option) *Pool {
	p := &Pool{
		workers: make([]*Worker, q.Shards()),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		shardOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewWorker(q.Dequeue(i), tracker, zones, em, shardOpts...)
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop waits for every worker to drain, up to a timeout each. The
// queue must be closed first so shard channels terminate.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
			p.logger.Warn(context.Background(), "worker shutdown timed out",
				logger.String("worker", w.name),
			)
		}
	}
}
