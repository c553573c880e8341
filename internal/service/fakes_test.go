package service

import (
	"context"
	"sync"
	"time"

	"power_monitor/internal/models"
	"power_monitor/internal/repository"
)

type fakeReadingRepo struct {
	mu       sync.Mutex
	inserted []models.Reading
	filters  []repository.ReadingFilter
	rows     []models.Reading
	dates    []string
	datesLoc *time.Location

	insertErr error
	listErr   error
	// gate, when set, blocks Insert until it is closed or receives.
	gate chan struct{}
}

func (f *fakeReadingRepo) Insert(ctx context.Context, r models.Reading) (int64, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, r)
	return int64(len(f.inserted)), nil
}

func (f *fakeReadingRepo) List(_ context.Context, flt repository.ReadingFilter) ([]models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, flt)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeReadingRepo) AvailableDates(_ context.Context, loc *time.Location) ([]string, error) {
	f.mu.Lock()
	f.datesLoc = loc
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.dates, nil
}

func (f *fakeReadingRepo) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func (f *fakeReadingRepo) setInsertErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertErr = err
}

type fakeCommandRepo struct {
	mu        sync.Mutex
	events    []models.CommandEvent
	appendErr error

	listFrom, listTo time.Time
	listType         string
}

func (f *fakeCommandRepo) Append(_ context.Context, e models.CommandEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeCommandRepo) List(_ context.Context, from, to time.Time, typ string) ([]models.CommandEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFrom, f.listTo, f.listType = from, to, typ
	return f.events, nil
}

// fakeRecorder collects command log entries synchronously.
type fakeRecorder struct {
	mu     sync.Mutex
	events []models.CommandEvent
}

func (r *fakeRecorder) Record(e models.CommandEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *fakeRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type published struct {
	Topic   string
	Payload string
	QoS     byte
	Retain  bool
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload []byte, qos byte, retain bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{Topic: topic, Payload: string(payload), QoS: qos, Retain: retain})
	return nil
}

func (p *fakePublisher) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.sent...)
}

type countingObserver struct {
	mu    sync.Mutex
	snaps []models.Snapshot
}

func (o *countingObserver) Observe(s models.Snapshot) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snaps = append(o.snaps, s)
	return true
}

// fakeOperatorRepo keeps operators in memory keyed by username.
type fakeOperatorRepo struct {
	mu     sync.Mutex
	byName map[string]models.Operator
	err    error
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{byName: make(map[string]models.Operator)}
}

func (f *fakeOperatorRepo) Create(_ context.Context, username, passwordHash string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.byName[username]; ok {
		return 0, repository.ErrOperatorExists
	}
	op := models.Operator{ID: len(f.byName) + 1, Username: username, PasswordHash: passwordHash}
	f.byName[username] = op
	return op.ID, nil
}

func (f *fakeOperatorRepo) ByUsername(_ context.Context, username string) (*models.Operator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	op, ok := f.byName[username]
	if !ok {
		return nil, nil
	}
	return &op, nil
}

func (r *fakeRecorder) all() []models.CommandEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.CommandEvent(nil), r.events...)
}
