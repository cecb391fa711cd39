// Package app provides the core service that wires tracking, crossing
// detection, event emission and reporting together.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/cylvision/dockwatch/internal/adapters/bus"
	"github.com/cylvision/dockwatch/internal/adapters/mq/queue"
	"github.com/cylvision/dockwatch/internal/adapters/mq/worker"
	"github.com/cylvision/dockwatch/internal/adapters/storage"
	"github.com/cylvision/dockwatch/internal/domain/dedupe"
	"github.com/cylvision/dockwatch/internal/domain/geometry"
	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/internal/domain/tracking"
	"github.com/cylvision/dockwatch/internal/emitter"
	"github.com/cylvision/dockwatch/internal/report"
	"github.com/cylvision/dockwatch/pkg/logger"
	"github.com/cylvision/dockwatch/pkg/metrics"
)

// Service owns the full pipeline: batches in, crossing events out,
// reports on demand.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *storage.Store
	tracker tracking.Store
	deduper dedupe.Deduper
	queue   *queue.ShardedQueue
	pool    *worker.Pool
	emitter *emitter.Emitter
	engine  *report.Engine
	pub     bus.Publisher

	// Configuration
	dbPath      string
	queueSize   int
	shardCount  int
	dedupeSize  int
	trackExpiry time.Duration
	minTravel   float64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPublisher sets the realtime fan-out channel. The service does
// not close it; its lifecycle belongs to the caller.
func WithPublisher(p bus.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

// WithDBPath sets the SQLite path for the event log.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithQueueSize bounds the total batch queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithShardCount sets the number of platform shards and workers.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithDedupeSize bounds the batch-ID idempotency window.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithTrackExpiry overrides the per-platform idle reset window.
func WithTrackExpiry(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.trackExpiry = d
		}
	}
}

// WithMinTravel overrides the jitter threshold in pixels.
func WithMinTravel(px float64) Option {
	return func(s *Service) {
		if px > 0 {
			s.minTravel = px
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:      "data.db",
		queueSize:   10_000,
		shardCount:  runtime.NumCPU(),
		dedupeSize:  50_000,
		trackExpiry: tracking.DefaultExpiry,
		minTravel:   geometry.DefaultMinTravel,
		logger:      nil, // resolved in Start
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the durable log and launches the pipeline. A storage
// failure here is fatal: without the log there is no system of record.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.pub == nil {
		s.pub = bus.NewMemory()
	}

	store, err := storage.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	s.store = store

	s.tracker = tracking.NewMemoryStore(tracking.WithExpiry(s.trackExpiry))
	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewShardedQueue(
		queue.WithShardCount(s.shardCount),
		queue.WithCapacity(s.queueSize),
	)
	s.emitter = emitter.New(s.pub, s.store)
	s.engine = report.NewEngine(s.store)
	s.pool = worker.NewPool(s.queue, s.tracker, s.store, s.emitter,
		worker.WithMinTravel(s.minTravel),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "crossing service started",
		logger.String("db", s.dbPath),
		logger.Int("shards", s.shardCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the pipeline and closes the log.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping crossing service...")

	_ = s.queue.Close()
	s.pool.Stop()
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "event log close failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "crossing service stopped")
}

// ProcessBatch submits one detection batch for asynchronous
// processing. Returns false when the batch was dropped (backpressure)
// or skipped as a duplicate delivery.
func (s *Service) ProcessBatch(ctx context.Context, b model.DetectionBatch) bool {
	if b.Platform == "" {
		metrics.RecordDecodeError()
		s.logger.Warn(ctx, "rejecting batch without platform")
		return false
	}

	metrics.RecordBatchReceived()

	if b.BatchID != "" && s.deduper.SeenAndRecord(ctx, b.BatchID) {
		metrics.RecordBatchDuplicate()
		s.logger.Debug(ctx, "skipping duplicate batch",
			logger.String("batchId", b.BatchID),
			logger.String("platform", b.Platform),
		)
		return false
	}

	if !s.queue.Enqueue(ctx, b) {
		if b.BatchID != "" {
			// Allow the publisher to retry a batch we never queued.
			s.deduper.Unrecord(ctx, b.BatchID)
		}
		s.logger.Warn(ctx, "batch dropped by backpressure",
			logger.String("platform", b.Platform),
		)
		return false
	}

	metrics.UpdateActiveTracks(s.tracker.TrackCount(ctx))
	return true
}

// ListReports returns filtered events in the export row shape.
func (s *Service) ListReports(ctx context.Context, f report.Filter) ([]report.Row, error) {
	return s.engine.Rows(ctx, f)
}

// ChartSeries returns time-bucketed sums for one platform (or "all").
func (s *Service) ChartSeries(ctx context.Context, platform string, period report.Period, start, end string) ([]report.Bucket, error) {
	return s.engine.Series(ctx, report.Filter{
		Platform: platform,
		Start:    start,
		End:      end,
	}, period)
}

// Summary returns the per-platform/per-zone rollup.
func (s *Service) Summary(ctx context.Context, platform string) (report.Summary, error) {
	return s.engine.Summarize(ctx, platform)
}

// GetZones returns a platform's configured zone map.
func (s *Service) GetZones(ctx context.Context, platform string) (map[string]model.Zone, error) {
	return s.store.Zones(ctx, platform)
}

// SetZones validates and replaces a platform's zone map. It takes
// effect for the next processed batch.
func (s *Service) SetZones(ctx context.Context, platform string, zones map[string]model.Zone) error {
	return s.store.SetZones(ctx, platform, zones)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"shardCount": s.shardCount,
		"queueSize":  s.queueSize,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats["queueLength"] = s.queue.Len()
	stats["activeTracks"] = s.tracker.TrackCount(ctx)
	stats["dedupeSize"] = s.deduper.Size()
	if n, err := s.store.CountEvents(ctx); err == nil {
		stats["eventCount"] = n
	}

	metrics.UpdateQueueSize(s.queue.Len())
	metrics.UpdateActiveTracks(s.tracker.TrackCount(ctx))
	return stats
}
