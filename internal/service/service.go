package service

import (
	"context"
	"errors"
	"time"

	"power_monitor/internal/logger"
	"power_monitor/internal/metrics"
	"power_monitor/internal/models"
	"power_monitor/internal/repository"
)

// Authorization manages operators and their bearer tokens.
type Authorization interface {
	Enabled() bool
	Register(ctx context.Context, username, password string) (models.Operator, error)
	SignIn(ctx context.Context, username, password string) (string, error)
	Authenticate(token string) (models.Operator, error)
}

// SwitchControl queues debounced commands for the actuator.
type SwitchControl interface {
	Request(ctx context.Context, req ControlRequest) (PendingCommand, error)
}

// Monitoring exposes the live snapshot.
type Monitoring interface {
	GetSnapshot() models.Snapshot
	GetSwitchStatus() SwitchStatus
}

// Forecaster turns history into a monthly energy/cost estimate.
type Forecaster interface {
	Predict(ctx context.Context) (ForecastResult, error)
}

// Readings exposes persisted readings.
type Readings interface {
	History(ctx context.Context, p HistoryParams) ([]models.Reading, error)
	Latest(ctx context.Context) (*models.Reading, error)
	AvailableDates(ctx context.Context) ([]string, error)
}

// CommandLog exposes the switch command log.
type CommandLog interface {
	ListCommands(ctx context.Context, f LogFilter) ([]models.CommandEvent, error)
}

// Service aggregates everything the HTTP layer talks to.
type Service struct {
	SwitchControl
	Monitoring
	Forecaster
	Readings
	CommandLog
	Authorization
}

// Options carries the runtime settings of the core.
type Options struct {
	Topics         Topics
	Debounce       time.Duration
	Device         string
	ForecastMethod ForecastMethod
	Location       *time.Location
	Auth           AuthConfig
}

// Core owns the background pieces: the ingest loop, the persister, the
// debouncer and the command recorder.
type Core struct {
	Store     *SnapshotStore
	Ingestor  *Ingestor
	Persister *ReadingPersister
	Switch    *SwitchService
	Commands  *CommandLogService
}

// NewService wires repositories, the transport publisher and the snapshot
// store into the API-facing Service and the background Core.
func NewService(repos *repository.Repository, publisher Publisher, opts Options, log *logger.Logger, m *metrics.Metrics) (*Service, *Core) {
	store := NewSnapshotStore()
	commands := NewCommandLogService(repos.Commands, log)
	persister := NewReadingPersister(repos.Readings, log, m)
	switches := NewSwitchService(publisher, commands, opts.Topics.Command, opts.Debounce, log, m)
	switches.device = opts.Device
	ingestor := NewIngestor(store, persister, commands, opts.Topics, log, m)

	svc := &Service{
		SwitchControl: switches,
		Monitoring:    NewMonitoringService(store, switches),
		Forecaster:    NewForecastService(repos.Readings, opts.ForecastMethod, opts.Location),
		Readings:      NewHistoryService(repos.Readings, opts.Location),
		CommandLog:    commands,
		Authorization: NewOperatorAuth(repos.Operators, opts.Auth),
	}
	core := &Core{
		Store:     store,
		Ingestor:  ingestor,
		Persister: persister,
		Switch:    switches,
		Commands:  commands,
	}
	return svc, core
}

// Shutdown flushes the pending switch command, then closes the persister and
// the command log and drains their outstanding writes. Updates the ingest
// loop delivers after this point are not stored.
func (c *Core) Shutdown(ctx context.Context) error {
	errSwitch := c.Switch.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		c.Persister.Close()
		c.Commands.Close()
		close(done)
	}()
	select {
	case <-done:
		return errSwitch
	case <-ctx.Done():
		return errors.Join(errSwitch, ctx.Err())
	}
}
