package service

import (
	"sync"

	"power_monitor/internal/models"
)

// SnapshotStore owns the live Snapshot. Writes come only from the ingest
// loop; HTTP handlers read copies.
type SnapshotStore struct {
	mu   sync.RWMutex
	snap models.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Snapshot returns a copy of the current state.
func (s *SnapshotStore) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SwitchStatus returns the last confirmed actuator state.
func (s *SnapshotStore) SwitchStatus() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.SwitchStatus
}

// SetChannel overwrites one channel and returns the snapshot as it stands
// right after the write.
func (s *SnapshotStore) SetChannel(ch models.Channel, v float64) (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snap.Set(ch, v) {
		return s.snap, false
	}
	return s.snap, true
}

// SetSwitchStatus overwrites the actuator state and returns the previous one.
func (s *SnapshotStore) SetSwitchStatus(v int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snap.SwitchStatus
	s.snap.SwitchStatus = v
	return prev
}
