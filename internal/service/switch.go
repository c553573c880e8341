package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"power_monitor/internal/logger"
	"power_monitor/internal/metrics"
	"power_monitor/internal/models"
)

// ErrInvalidSwitchValue rejects control values other than 0 and 1.
var ErrInvalidSwitchValue = errors.New("value must be 0 or 1")

// ErrSwitchClosed is returned for requests arriving after Shutdown.
var ErrSwitchClosed = errors.New("switch service is shut down")

const (
	DefaultDebounce       = time.Second
	defaultPublishTimeout = 5 * time.Second

	// commandQoS is at-least-once; commands are retained so the device sees
	// the last one after reconnecting.
	commandQoS    byte = 1
	commandRetain      = true
)

// Publisher sends one message on the transport.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte, qos byte, retain bool) error
}

// PendingCommand is a queued command that has not fired yet.
type PendingCommand struct {
	Value      int       `json:"value"`
	Device     string    `json:"device,omitempty"`
	OperatorID int       `json:"operator_id,omitempty"`
	Operator   string    `json:"operator,omitempty"`
	FireAt     time.Time `json:"fire_at"`
}

// SwitchService coalesces control requests: each request replaces the
// pending one and restarts the quiet period; only the last request within a
// quiet period is published.
type SwitchService struct {
	publisher      Publisher
	recorder       CommandRecorder
	topic          string
	device         string // label used when a request names none
	quiet          time.Duration
	publishTimeout time.Duration
	log            *logger.Logger
	metrics        *metrics.Metrics
	now            func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending *PendingCommand
	closed  bool

	inflight sync.WaitGroup
}

func NewSwitchService(publisher Publisher, recorder CommandRecorder, topic string, quiet time.Duration, log *logger.Logger, m *metrics.Metrics) *SwitchService {
	if quiet <= 0 {
		quiet = DefaultDebounce
	}
	return &SwitchService{
		publisher:      publisher,
		recorder:       recorder,
		topic:          topic,
		quiet:          quiet,
		publishTimeout: defaultPublishTimeout,
		log:            logger.OrNop(log),
		metrics:        m,
		now:            time.Now,
	}
}

// Request validates req and queues it, replacing any pending command. It
// returns as soon as the command is queued.
func (s *SwitchService) Request(_ context.Context, req ControlRequest) (PendingCommand, error) {
	if req.Value != 0 && req.Value != 1 {
		s.metrics.Command(metrics.CommandRejected)
		return PendingCommand{}, ErrInvalidSwitchValue
	}

	if req.Device == "" {
		req.Device = s.device
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return PendingCommand{}, ErrSwitchClosed
	}
	if s.timer != nil {
		s.timer.Stop()
		s.metrics.Command(metrics.CommandCoalesced)
		s.log.Debugw("switch_command_coalesced", "replaced", s.pending.Value, "value", req.Value)
	}

	s.gen++
	gen := s.gen
	cmd := PendingCommand{
		Value:      req.Value,
		Device:     req.Device,
		OperatorID: req.OperatorID,
		Operator:   req.Operator,
		FireAt:     s.now().Add(s.quiet),
	}
	s.pending = &cmd
	s.timer = time.AfterFunc(s.quiet, func() { s.fire(gen) })

	s.metrics.Command(metrics.CommandQueued)
	s.log.Infow("switch_command_queued", "value", req.Value, "device", req.Device, "operator", req.Operator, "fire_at", cmd.FireAt)
	return cmd, nil
}

// Pending returns the queued command, if any.
func (s *SwitchService) Pending() (PendingCommand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingCommand{}, false
	}
	return *s.pending, true
}

// fire publishes the command queued under gen unless a newer request has
// replaced it in the meantime.
func (s *SwitchService) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	cmd := s.take()
	s.mu.Unlock()

	s.publish(cmd)
}

// take clears the pending slot. Caller holds s.mu.
func (s *SwitchService) take() PendingCommand {
	cmd := *s.pending
	s.pending = nil
	s.timer = nil
	s.inflight.Add(1)
	return cmd
}

func (s *SwitchService) publish(cmd PendingCommand) {
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()

	payload := []byte(strconv.Itoa(cmd.Value))
	meta := map[string]any{"value": cmd.Value, "device": cmd.Device, "topic": s.topic}
	if cmd.OperatorID != 0 {
		meta["user_id"] = cmd.OperatorID
		meta["operator"] = cmd.Operator
	}

	if err := s.publisher.Publish(ctx, s.topic, payload, commandQoS, commandRetain); err != nil {
		s.metrics.Command(metrics.CommandFailed)
		s.log.Errorw("switch_command_publish_failed", "err", err, "topic", s.topic, "value", cmd.Value)
		meta["error"] = err.Error()
		s.record(models.EventCommandFailed, fmt.Sprintf("Failed to send control value %d", cmd.Value), meta)
		return
	}

	s.metrics.Command(metrics.CommandPublished)
	s.log.Infow("switch_command_sent", "topic", s.topic, "value", cmd.Value)
	s.record(models.EventCommandSent, fmt.Sprintf("Control value %d sent to switch", cmd.Value), meta)
}

func (s *SwitchService) record(typ, desc string, meta map[string]any) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(models.CommandEvent{Type: typ, Description: desc, Metadata: meta})
}

// Shutdown stops accepting requests, publishes a still-pending command right
// away and waits for in-flight publishes or ctx, whichever comes first.
func (s *SwitchService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	var (
		cmd     PendingCommand
		flushed bool
	)
	if s.pending != nil {
		s.timer.Stop()
		s.gen++
		cmd = s.take()
		flushed = true
	}
	s.mu.Unlock()

	if flushed {
		s.log.Infow("switch_command_flushed_on_shutdown", "value", cmd.Value)
		go s.publish(cmd)
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
