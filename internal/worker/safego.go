package worker

import (
	"context"
	"sync"
	"time"

	"power_monitor/internal/logger"
)

// Policy bounds how often a panicking worker is restarted.
type Policy struct {
	MaxRetries int           // consecutive panics before giving up
	FirstDelay time.Duration // backoff after the first panic, doubled each time
	MaxDelay   time.Duration
	ResetAfter time.Duration // a run this long clears the retry count
}

// DefaultPolicy retries ten times with exponential backoff capped at ten
// minutes.
var DefaultPolicy = Policy{
	MaxRetries: 10,
	FirstDelay: time.Second,
	MaxDelay:   10 * time.Minute,
	ResetAfter: 2 * time.Minute,
}

// Group supervises long-running workers. A worker that returns normally is
// done; a worker that panics is restarted with backoff. When a worker runs
// out of retries the group cancels its context so the process shuts down.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger
	policy Policy
	wg     sync.WaitGroup
}

func NewGroup(ctx context.Context, cancel context.CancelFunc, log *logger.Logger, policy Policy) *Group {
	return &Group{ctx: ctx, cancel: cancel, log: logger.OrNop(log), policy: policy}
}

// Go starts fn under supervision.
func (g *Group) Go(name string, fn func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.supervise(name, fn)
	}()
}

// Wait blocks until every worker has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

func (g *Group) supervise(name string, fn func(ctx context.Context)) {
	retries := 0
	delay := g.policy.FirstDelay

	for {
		started := time.Now()
		panicValue := runRecovered(g.ctx, fn)
		if panicValue == nil {
			return
		}

		if time.Since(started) >= g.policy.ResetAfter {
			retries = 0
			delay = g.policy.FirstDelay
		}
		retries++
		g.log.Errorw("worker_panic", "worker", name, "attempt", retries, "max_retries", g.policy.MaxRetries, "panic", panicValue)

		if retries >= g.policy.MaxRetries {
			g.log.Errorw("worker_gave_up", "worker", name, "retries", retries)
			g.cancel()
			return
		}

		g.log.Warnw("worker_restart_scheduled", "worker", name, "delay", delay)
		select {
		case <-time.After(delay):
			delay = min(delay*2, g.policy.MaxDelay)
		case <-g.ctx.Done():
			return
		}
	}
}

func runRecovered(ctx context.Context, fn func(ctx context.Context)) (panicValue any) {
	defer func() {
		panicValue = recover()
	}()
	fn(ctx)
	return nil
}
