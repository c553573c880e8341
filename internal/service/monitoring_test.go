package service

import (
	"context"
	"testing"
	"time"

	"power_monitor/internal/models"
	"power_monitor/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitoringService_Snapshot(t *testing.T) {
	store := NewSnapshotStore()
	store.SetChannel(models.ChannelEnergy, 12.25)
	store.SetSwitchStatus(1)

	svc := NewMonitoringService(store, nil)
	snap := svc.GetSnapshot()
	assert.Equal(t, 12.25, snap.Energy)
	assert.Equal(t, 1, snap.SwitchStatus)
	assert.Equal(t, SwitchStatus{Status: 1}, svc.GetSwitchStatus())
}

func TestMonitoringService_SwitchStatusShowsPending(t *testing.T) {
	store := NewSnapshotStore()
	switches := NewSwitchService(&fakePublisher{}, nil, "t", time.Hour, nil, nil)
	svc := NewMonitoringService(store, switches)

	_, err := switches.Request(context.Background(), ControlRequest{Value: 1})
	require.NoError(t, err)

	st := svc.GetSwitchStatus()
	assert.Equal(t, 0, st.Status, "status stays at the last confirmed state")
	require.NotNil(t, st.Pending)
	assert.Equal(t, 1, st.Pending.Value)
}

func TestNewService_WiresCore(t *testing.T) {
	readings := &fakeReadingRepo{}
	commands := &fakeCommandRepo{}
	repos := &repository.Repository{Readings: readings, Commands: commands, Operators: newFakeOperatorRepo()}
	pub := &fakePublisher{}

	svc, core := NewService(repos, pub, Options{
		Topics:   DefaultTopics(),
		Debounce: time.Hour,
	}, nil, nil)

	assert.Equal(t, OutcomeSensor, core.Ingestor.Handle(msg("sensor/power", "42")))
	assert.Equal(t, 42.0, svc.GetSnapshot().Power)

	_, err := svc.Request(context.Background(), ControlRequest{Value: 1})
	require.NoError(t, err)
	assert.False(t, svc.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, core.Shutdown(ctx))

	assert.Equal(t, 1, readings.insertedCount())
	require.Len(t, pub.messages(), 1)
	require.Len(t, commands.events, 1)
	assert.Equal(t, models.EventCommandSent, commands.events[0].Type)
}
