package service

import "power_monitor/internal/models"

// MonitoringService answers live-state queries from the SnapshotStore.
type MonitoringService struct {
	store    *SnapshotStore
	switches *SwitchService
}

func NewMonitoringService(store *SnapshotStore, switches *SwitchService) *MonitoringService {
	return &MonitoringService{store: store, switches: switches}
}

func (s *MonitoringService) GetSnapshot() models.Snapshot {
	return s.store.Snapshot()
}

func (s *MonitoringService) GetSwitchStatus() SwitchStatus {
	st := SwitchStatus{Status: s.store.SwitchStatus()}
	if s.switches != nil {
		if cmd, ok := s.switches.Pending(); ok {
			st.Pending = &cmd
		}
	}
	return st
}

// SwitchStatus is the confirmed actuator state plus any queued command.
type SwitchStatus struct {
	Status  int             `json:"status"`
	Pending *PendingCommand `json:"pending,omitempty"`
}
