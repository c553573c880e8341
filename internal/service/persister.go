package service

import (
	"context"
	"sync"
	"time"

	"power_monitor/internal/logger"
	"power_monitor/internal/metrics"
	"power_monitor/internal/models"
	"power_monitor/internal/repository"
)

const defaultPersistTimeout = 10 * time.Second

// ReadingPersister writes at most one Reading per wall-clock minute. The
// minute marker only moves after a successful insert, so a failed write is
// retried by the next sensor update. A minute that is being written is
// claimed until its insert returns; later minutes may start meanwhile.
type ReadingPersister struct {
	repo    repository.ReadingRepo
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	timeout time.Duration

	mu             sync.Mutex
	saved          bool
	lastSaveMinute int64
	inFlight       int
	inFlightMinute int64 // highest minute with a write running
	closed         bool

	wg sync.WaitGroup
}

func NewReadingPersister(repo repository.ReadingRepo, log *logger.Logger, m *metrics.Metrics) *ReadingPersister {
	return &ReadingPersister{
		repo:    repo,
		log:     logger.OrNop(log),
		metrics: m,
		now:     time.Now,
		timeout: defaultPersistTimeout,
	}
}

// minuteBucket is floor(t / 60s) in unix time.
func minuteBucket(t time.Time) int64 {
	sec := t.Unix()
	if sec < 0 && sec%60 != 0 {
		return sec/60 - 1
	}
	return sec / 60
}

// Observe is called after every sensor-channel update with the snapshot as it
// stood after that update. It returns true when a write was started. The
// write runs in its own goroutine.
func (p *ReadingPersister) Observe(snap models.Snapshot) bool {
	now := p.now()
	minute := minuteBucket(now)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	if (p.saved && minute <= p.lastSaveMinute) || (p.inFlight > 0 && minute <= p.inFlightMinute) {
		last := p.lastSaveMinute
		p.mu.Unlock()
		p.metrics.ReadingSkipped()
		p.log.Debugw("reading_persist_skipped", "minute", minute, "last_save_minute", last)
		return false
	}
	p.inFlight++
	p.inFlightMinute = minute
	p.wg.Add(1)
	p.mu.Unlock()

	go p.write(models.NewReading(snap, now), minute)
	return true
}

func (p *ReadingPersister) write(rd models.Reading, minute int64) {
	defer p.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	started := time.Now()
	id, err := p.repo.Insert(ctx, rd)

	p.mu.Lock()
	p.inFlight--
	if err == nil && (!p.saved || minute > p.lastSaveMinute) {
		p.saved = true
		p.lastSaveMinute = minute
	}
	p.mu.Unlock()

	if err != nil {
		p.metrics.ReadingFailed()
		p.log.Errorw("reading_persist_failed", "err", err, "minute", minute)
		return
	}
	p.metrics.ReadingPersisted(time.Since(started))
	p.log.Infow("reading_persisted", "id", id, "timestamp", rd.Timestamp, "power", rd.Power)
}

// LastSaveMinute reports the minute bucket of the last successful write.
func (p *ReadingPersister) LastSaveMinute() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSaveMinute, p.saved
}

// Wait blocks until every started write has finished.
func (p *ReadingPersister) Wait() {
	p.wg.Wait()
}

// Close stops new writes and waits for the running ones.
func (p *ReadingPersister) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
