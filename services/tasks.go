package services

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs a function after a delay. Tests substitute it to control time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules on the wall clock.
var RealScheduler Scheduler = realScheduler{}

// taskGroup tracks the background work of one dashboard: fire-and-forget
// loads and delayed refreshes. Pending timers can be cancelled as a group.
type taskGroup struct {
	ctx       context.Context
	cancel    context.CancelFunc
	scheduler Scheduler

	wg      sync.WaitGroup
	mu      sync.Mutex
	timers  map[uint64]Timer
	nextID  uint64
	stopped bool
}

func newTaskGroup(scheduler Scheduler) *taskGroup {
	if scheduler == nil {
		scheduler = RealScheduler
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &taskGroup{ctx: ctx, cancel: cancel, scheduler: scheduler, timers: make(map[uint64]Timer)}
}

// Go runs fn in the background with the group's context.
func (g *taskGroup) Go(fn func(ctx context.Context)) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		fn(g.ctx)
	}()
}

// After runs fn once the delay has elapsed unless CancelPending or Stop runs first.
func (g *taskGroup) After(delay time.Duration, fn func(ctx context.Context)) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	id := g.nextID
	g.nextID++
	g.wg.Add(1)
	g.timers[id] = g.scheduler.AfterFunc(delay, func() {
		g.mu.Lock()
		_, pending := g.timers[id]
		delete(g.timers, id)
		g.mu.Unlock()
		if !pending {
			return // cancelled after the timer already fired
		}
		defer g.wg.Done()
		fn(g.ctx)
	})
	g.mu.Unlock()
}

// CancelPending stops every timer that has not fired yet.
func (g *taskGroup) CancelPending() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelPendingLocked()
}

func (g *taskGroup) cancelPendingLocked() {
	for id, timer := range g.timers {
		timer.Stop()
		delete(g.timers, id)
		g.wg.Done()
	}
}

// Wait blocks until every started task and fired timer has finished.
func (g *taskGroup) Wait() {
	g.wg.Wait()
}

// Stop cancels pending timers and the context of running tasks, then waits.
func (g *taskGroup) Stop() {
	g.mu.Lock()
	g.stopped = true
	g.cancelPendingLocked()
	g.mu.Unlock()
	g.cancel()
	g.wg.Wait()
}
