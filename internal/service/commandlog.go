package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"power_monitor/internal/logger"
	"power_monitor/internal/models"
	"power_monitor/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")

const recordTimeout = 5 * time.Second

// CommandLogService appends switch command events without blocking the
// caller and serves the log back to the API.
type CommandLogService struct {
	repo repository.CommandRepo
	log  *logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewCommandLogService(repo repository.CommandRepo, log *logger.Logger) *CommandLogService {
	return &CommandLogService{repo: repo, log: logger.OrNop(log)}
}

// Record stores e in the background. Failures are logged only. Events
// arriving after Close are dropped.
func (s *CommandLogService) Record(e models.CommandEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warnw("command_log_closed_event_dropped", "type", e.Type, "event_id", e.EventID)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.repo.Append(ctx, e); err != nil {
			s.log.Errorw("command_log_append_failed", "err", err, "type", e.Type, "event_id", e.EventID)
		}
	}()
}

// Wait blocks until every pending Record has finished.
func (s *CommandLogService) Wait() {
	s.wg.Wait()
}

// Close stops accepting events and waits for the pending ones.
func (s *CommandLogService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// ListCommands returns the log filtered by f.
func (s *CommandLogService) ListCommands(ctx context.Context, f LogFilter) ([]models.CommandEvent, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidTimeRange
	}
	return s.repo.List(ctx, from, to, strings.ToUpper(strings.TrimSpace(f.Type)))
}
