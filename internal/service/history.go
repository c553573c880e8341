package service

import (
	"context"
	"time"

	"power_monitor/internal/models"
	"power_monitor/internal/repository"
)

// DefaultHistoryLimit caps a history query when the caller gives no limit.
const DefaultHistoryLimit = 1000

type HistoryService struct {
	readings repository.ReadingRepo
	loc      *time.Location // day boundaries, shared with the daily forecast
}

func NewHistoryService(readings repository.ReadingRepo, loc *time.Location) *HistoryService {
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{readings: readings, loc: loc}
}

// History returns persisted readings oldest first.
func (s *HistoryService) History(ctx context.Context, p HistoryParams) ([]models.Reading, error) {
	start := normalizeToUTC(p.Start)
	end := normalizeToUTC(p.End)
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return nil, ErrInvalidTimeRange
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.readings.List(ctx, repository.ReadingFilter{From: start, To: end, Limit: limit})
}

// Latest returns the newest reading with power > 0, or nil when there is none.
func (s *HistoryService) Latest(ctx context.Context) (*models.Reading, error) {
	rows, err := s.readings.List(ctx, repository.ReadingFilter{PositivePower: true, Descending: true, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// AvailableDates lists the days that have readings with power > 0, newest
// first. Days are cut in the same zone the daily forecast buckets by.
func (s *HistoryService) AvailableDates(ctx context.Context) ([]string, error) {
	return s.readings.AvailableDates(ctx, s.loc)
}
