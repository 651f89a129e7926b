package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/steward/internal/backend"
)

// Snapshot is the latest polled data for one resource.
type Snapshot struct {
	// Items holds a []T of the resource's row type.
	Items               any
	Loaded              bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the resource has failed several polls in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Rows returns a copy of the snapshot's items as []T, or nil when the
// snapshot holds another type.
func Rows[T any](s Snapshot) []T {
	rows, _ := s.Items.([]T)
	return slices.Clone(rows)
}

// Store holds one Snapshot per resource for the poller and the UI.
type Store struct {
	mu      sync.RWMutex
	snaps   map[backend.Resource]Snapshot
	version uint64
}

// Update records a poll result. When err is non-nil the previous items are
// kept and the error is recorded for visibility.
func (s *Store) Update(resource backend.Resource, items any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snaps == nil {
		s.snaps = make(map[backend.Resource]Snapshot)
	}
	snap := s.snaps[resource]
	snap.LastUpdated = time.Now()
	s.version++

	if err != nil {
		snap.LastError = err
		snap.ConsecutiveFailures++
		s.snaps[resource] = snap
		return
	}

	snap.Items = items
	snap.Loaded = true
	snap.LastError = nil
	snap.ConsecutiveFailures = 0
	s.snaps[resource] = snap
}

// Snapshot returns a copy of the resource's snapshot.
func (s *Store) Snapshot(resource backend.Resource) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snaps[resource]
	if snap.LastError != nil {
		snap.LastError = fmt.Errorf("%w", snap.LastError)
	}
	return snap
}

// Version increases on every Update so readers can skip unchanged state.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Offline reports whether any resource is offline.
func (s *Store) Offline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, snap := range s.snaps {
		if snap.IsOffline() {
			return true
		}
	}
	return false
}
