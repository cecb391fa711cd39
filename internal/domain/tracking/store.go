// Package tracking holds per-platform track state: the last known
// centroid of every live track identity.
package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/cylvision/dockwatch/internal/domain/model"
)

// DefaultExpiry is how long a platform may be silent before its whole
// track map is discarded. Expiry is a full per-platform reset, not
// per-track aging: after a long gap every reference point is stale.
const DefaultExpiry = 300 * time.Second

// Store records the last known position of each track, partitioned by
// platform. Platforms never contend with each other; access to one
// platform's state is serialized by a per-platform lock.
type Store interface {
	// Update records a track's new centroid and returns the previous
	// one. ok is false on first sighting, when no crossing test must
	// run.
	Update(ctx context.Context, platform string, trackID int, pos model.Point) (prev model.Point, ok bool)

	// Touch advances the platform's last-activity clock.
	Touch(ctx context.Context, platform string)

	// MaybeExpire clears the platform's track map if it has been idle
	// longer than the expiry window. Returns true if a reset happened.
	MaybeExpire(ctx context.Context, platform string) bool

	// TrackCount returns the number of live tracks across all platforms.
	TrackCount(ctx context.Context) int
}

// platformState is one platform's partition. Its mutex is the only
// synchronization on the hot path; the store-level lock is taken only
// to find or create the partition.
type platformState struct {
	mu           sync.Mutex
	tracks       map[int]model.Point
	lastActivity time.Time
}

// MemoryStore implements Store with one lock per platform.
type MemoryStore struct {
	mu        sync.RWMutex
	platforms map[string]*platformState

	expiry time.Duration
	now    func() time.Time
}

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithExpiry overrides the idle window after which a platform's track
// map is reset.
func WithExpiry(d time.Duration) Option {
	return func(s *MemoryStore) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithNow injects a clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty track store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		platforms: make(map[string]*platformState),
		expiry:    DefaultExpiry,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// platform finds or creates the named partition.
func (s *MemoryStore) platform(name string) *platformState {
	s.mu.RLock()
	ps := s.platforms[name]
	s.mu.RUnlock()
	if ps != nil {
		return ps
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ps = s.platforms[name]; ps == nil {
		ps = &platformState{
			tracks:       make(map[int]model.Point),
			lastActivity: s.now(),
		}
		s.platforms[name] = ps
	}
	return ps
}

// Update records pos for the track and returns the prior position.
func (s *MemoryStore) Update(_ context.Context, platform string, trackID int, pos model.Point) (model.Point, bool) {
	ps := s.platform(platform)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	prev, ok := ps.tracks[trackID]
	ps.tracks[trackID] = pos
	return prev, ok
}

// Touch marks the platform as active now.
func (s *MemoryStore) Touch(_ context.Context, platform string) {
	ps := s.platform(platform)
	ps.mu.Lock()
	ps.lastActivity = s.now()
	ps.mu.Unlock()
}

// MaybeExpire resets the platform's track map if it has been idle past
// the expiry window. Callers run this before applying a new batch so a
// stale reference point is never compared against a fresh sighting.
func (s *MemoryStore) MaybeExpire(_ context.Context, platform string) bool {
	ps := s.platform(platform)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if s.now().Sub(ps.lastActivity) <= s.expiry {
		return false
	}
	ps.tracks = make(map[int]model.Point)
	ps.lastActivity = s.now()
	return true
}

// TrackCount sums live tracks over all platforms.
func (s *MemoryStore) TrackCount(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, ps := range s.platforms {
		ps.mu.Lock()
		total += len(ps.tracks)
		ps.mu.Unlock()
	}
	return total
}
