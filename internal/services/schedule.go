package services

import (
	"context"
	"sync"
	"time"
)

// Fixed grace delays of the workflow. They are deliberately not configurable.
const (
	// FollowUpDelay separates an AI answer from the contextual follow-up question.
	FollowUpDelay = 1500 * time.Millisecond
	// RetryRefreshGrace gives the backend time to move a retried resource out
	// of Failed before the project is re-fetched.
	RetryRefreshGrace = 2 * time.Second
)

// Scheduler runs delayed work for one session. Work still waiting when the
// session context ends is dropped, so a refresh never lands in a session the
// user already navigated away from.
type Scheduler struct {
	ctx   context.Context
	after func(time.Duration) <-chan time.Time
	wg    sync.WaitGroup
}

func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{ctx: ctx, after: time.After}
}

// After runs fn once d has elapsed, unless the session ends first.
func (s *Scheduler) After(d time.Duration, fn func(ctx context.Context)) {
	timer := s.after(d)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-s.ctx.Done():
			return
		case <-timer:
		}
		if s.ctx.Err() != nil {
			return
		}
		fn(s.ctx)
	}()
}

// Bind derives a context that ends with either ctx or the session.
func (s *Scheduler) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Closed reports whether the session ended.
func (s *Scheduler) Closed() bool { return s.ctx.Err() != nil }

// Wait blocks until all scheduled work has run or been dropped.
func (s *Scheduler) Wait() { s.wg.Wait() }
