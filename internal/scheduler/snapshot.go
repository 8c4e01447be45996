package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/stocktracker/internal/batch"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/logger"
)

// snapshotCacheKey is where the latest snapshot is mirrored when a cache is set
const snapshotCacheKey = "premarket:latest"

// Snapshot is one scheduled premarket batch
type Snapshot struct {
	TakenAt time.Time                `json:"taken_at"`
	Rows    []contracts.PremarketRow `json:"rows"`
	Summary batch.Summary            `json:"summary"`
	IsStale bool                     `json:"is_stale"`
}

// SnapshotCache mirrors snapshots across processes; *redis.Cache satisfies it
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// SnapshotStore keeps the latest premarket snapshot and fans it out to subscribers
// ⭐ SSOT: the latest/stream endpoints read snapshots from here only
type SnapshotStore struct {
	mu     sync.RWMutex
	latest *Snapshot
	subs   map[chan Snapshot]struct{}
	ttl    time.Duration
	cache  SnapshotCache
	logger *logger.Logger
}

// NewSnapshotStore creates a store; snapshots older than ttl are reported stale.
// cache may be nil.
func NewSnapshotStore(ttl time.Duration, cache SnapshotCache, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		subs:   make(map[chan Snapshot]struct{}),
		ttl:    ttl,
		cache:  cache,
		logger: log.WithComponent("snapshots"),
	}
}

// Publish replaces the latest snapshot and notifies subscribers.
// A subscriber that has not consumed the previous snapshot only sees the newest.
func (s *SnapshotStore) Publish(ctx context.Context, snap Snapshot) {
	snap.IsStale = false

	s.mu.Lock()
	s.latest = &snap
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	subscribers := len(s.subs)
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotCacheKey, snap, s.ttl); err != nil {
			s.logger.WithError(err).Warn("Failed to mirror snapshot")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"rows":        len(snap.Rows),
		"subscribers": subscribers,
	}).Debug("Published premarket snapshot")
}

// Latest returns the newest snapshot, falling back to the mirror cache
func (s *SnapshotStore) Latest(ctx context.Context) (*Snapshot, bool) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil && s.cache != nil {
		var cached Snapshot
		hit, err := s.cache.Get(ctx, snapshotCacheKey, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to read mirrored snapshot")
		}
		if hit {
			latest = &cached
		}
	}

	if latest == nil {
		return nil, false
	}

	out := *latest
	out.IsStale = s.ttl > 0 && time.Since(out.TakenAt) > s.ttl
	return &out, true
}

// Subscribe returns a channel receiving every published snapshot and a cancel func
func (s *SnapshotStore) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions
func (s *SnapshotStore) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// CleanStale drops the in-memory snapshot once it is older than ttl
func (s *SnapshotStore) CleanStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil || s.ttl <= 0 || time.Since(s.latest.TakenAt) <= s.ttl {
		return false
	}
	s.latest = nil
	return true
}
