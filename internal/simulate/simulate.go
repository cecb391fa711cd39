// Package simulate generates synthetic detection batches: tracks
// walking back and forth across a zone boundary, the way a loader
// carries cylinders over the dock line. Used to exercise a running
// service without cameras.
package simulate

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/pkg/logger"
)

// Frame geometry constants matching the relay's 1020x600 resize.
const (
	frameWidth  = 1020
	frameHeight = 600
	boxSize     = 40
	stepPx      = 25
)

// Config controls the generated traffic.
type Config struct {
	// Platforms is how many synthetic docks to simulate.
	Platforms int
	// TracksPerPlatform is how many concurrent walkers each dock has.
	TracksPerPlatform int
	// Frames is the number of batches per platform.
	Frames int
	// Interval is the delay between frames.
	Interval time.Duration
	// Seed fixes the random walk for reproducible runs.
	Seed int64
}

// PublishFunc delivers one generated batch.
type PublishFunc func(ctx context.Context, b model.DetectionBatch) error

// Generator produces detection batches for synthetic platforms.
type Generator struct {
	cfg   Config
	rng   *rand.Rand
	log   logger.Logger
	zones map[string]model.Zone
}

// NewGenerator creates a generator. Every platform gets the same two
// zones: a horizontal line across the middle of the frame and a second
// one slightly below it, so a single walk can cross both.
func NewGenerator(cfg Config) *Generator {
	if cfg.Platforms < 1 {
		cfg.Platforms = 1
	}
	if cfg.TracksPerPlatform < 1 {
		cfg.TracksPerPlatform = 2
	}
	if cfg.Frames < 1 {
		cfg.Frames = 100
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // synthetic traffic only
		log: logger.Get().Named("simulate"),
		zones: map[string]model.Zone{
			"A": {P1: model.Point{0, frameHeight / 2}, P2: model.Point{frameWidth, frameHeight / 2}},
			"B": {P1: model.Point{0, frameHeight/2 + 80}, P2: model.Point{frameWidth, frameHeight/2 + 80}},
		},
	}
}

// walker is one synthetic track's position and vertical heading.
type walker struct {
	x, y float64
	dy   float64
}

// Run generates batches until the frame budget is spent or ctx is
// cancelled, delivering each through publish.
func (g *Generator) Run(ctx context.Context, publish PublishFunc) error {
	platforms := make([]string, g.cfg.Platforms)
	walkers := make([][]walker, g.cfg.Platforms)
	for i := range platforms {
		platforms[i] = "dock-" + string(rune('a'+i%26))
		ws := make([]walker, g.cfg.TracksPerPlatform)
		for j := range ws {
			ws[j] = walker{
				x:  g.rng.Float64() * frameWidth,
				y:  g.rng.Float64() * frameHeight,
				dy: stepPx,
			}
		}
		walkers[i] = ws
	}

	for frame := 0; frame < g.cfg.Frames; frame++ {
		for i, platform := range platforms {
			batch := g.nextBatch(platform, walkers[i])
			if err := publish(ctx, batch); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.cfg.Interval):
		}
	}
	g.log.Info(ctx, "simulation finished",
		logger.Int("platforms", g.cfg.Platforms),
		logger.Int("frames", g.cfg.Frames),
	)
	return nil
}

// nextBatch advances every walker one step and snapshots the frame.
func (g *Generator) nextBatch(platform string, ws []walker) model.DetectionBatch {
	detections := make([]model.Detection, len(ws))
	for j := range ws {
		w := &ws[j]
		w.y += w.dy
		w.x += (g.rng.Float64() - 0.5) * 8 // lateral drift
		if w.y < 0 || w.y > frameHeight {
			w.dy = -w.dy
			w.y += 2 * w.dy
		}
		detections[j] = model.Detection{
			TrackID: j + 1,
			Box:     [4]float64{w.x - boxSize/2, w.y - boxSize/2, w.x + boxSize/2, w.y + boxSize/2},
			Conf:    0.5 + g.rng.Float64()/2,
			Center:  model.Point{w.x, w.y},
		}
	}
	return model.DetectionBatch{
		BatchID:    uuid.New().String(),
		Platform:   platform,
		Zones:      g.zones,
		Detections: detections,
	}
}
