// Package config defines service configuration structures and loading
// hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the ops HTTP listen address (healthz, stats, metrics).
	Addr string `koanf:"addr"`

	// RedisURL locates the pub/sub broker carrying detection batches
	// in and realtime counts out.
	RedisURL string `koanf:"redis_url"`

	// BatchChannel is the inbound channel the camera relay publishes
	// detection batches on.
	BatchChannel string `koanf:"batch_channel"`

	// CountsChannel is the outbound channel realtime crossing counts
	// are published on.
	CountsChannel string `koanf:"counts_channel"`

	// DBPath is the SQLite file holding the event log and zone
	// configuration.
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the total number of queued batches across all
	// shards.
	QueueSize int `koanf:"queue_size"`

	// ShardCount sets how many platform shards (and workers) process
	// batches. Batches for one platform always land on the same shard.
	ShardCount int `koanf:"shard_count"`

	// DedupeSize bounds the window of remembered batch IDs.
	DedupeSize int `koanf:"dedupe_size"`

	// TrackExpirySeconds is the per-platform idle window before the
	// track map is reset.
	TrackExpirySeconds int `koanf:"track_expiry_seconds"`

	// MinTravelPx is the jitter threshold: centroid movements at or
	// below this many pixels never trigger a crossing test.
	MinTravelPx float64 `koanf:"min_travel_px"`
}

// New returns the configuration defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9091",
		RedisURL:           "redis://localhost:6379",
		BatchChannel:       "camera_frames",
		CountsChannel:      "processed_counts",
		DBPath:             "data.db",
		QueueSize:          10_000,
		ShardCount:         runtime.NumCPU(),
		DedupeSize:         50_000,
		TrackExpirySeconds: 300,
		MinTravelPx:        10,
	}
}
