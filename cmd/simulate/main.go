// Command simulate publishes synthetic detection batches to a running
// dockwatch service over Redis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cylvision/dockwatch/internal/domain/model"
	"github.com/cylvision/dockwatch/internal/simulate"
	"github.com/cylvision/dockwatch/pkg/logger"
)

const (
	defaultPlatforms = 3
	defaultTracks    = 2
	defaultFrames    = 200
	defaultInterval  = 100 * time.Millisecond
)

func main() {
	var (
		redisURL  = flag.String("redis", "redis://localhost:6379", "Redis URL of the running service")
		channel   = flag.String("channel", "camera_frames", "Inbound batch channel")
		platforms = flag.Int("platforms", defaultPlatforms, "Number of synthetic platforms")
		tracks    = flag.Int("tracks", defaultTracks, "Walkers per platform")
		frames    = flag.Int("frames", defaultFrames, "Frames per platform")
		interval  = flag.Duration("interval", defaultInterval, "Delay between frames")
		seed      = flag.Int64("seed", 0, "Random seed (0 = time-based)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := redis.ParseURL(*redisURL)
	if err != nil {
		log.Error(ctx, "bad redis url", logger.Error(err))
		return
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error(ctx, "redis unreachable", logger.Error(err))
		return
	}

	gen := simulate.NewGenerator(simulate.Config{
		Platforms:         *platforms,
		TracksPerPlatform: *tracks,
		Frames:            *frames,
		Interval:          *interval,
		Seed:              *seed,
	})

	publish := func(ctx context.Context, b model.DetectionBatch) error {
		payload, err := json.Marshal(b)
		if err != nil {
			return err
		}
		return client.Publish(ctx, *channel, payload).Err()
	}

	if err := gen.Run(ctx, publish); err != nil && ctx.Err() == nil {
		log.Error(ctx, "simulation failed", logger.Error(err))
	}
}
