// Package thread runs a function on its own goroutine with cooperative
// exit and pause/resume signalling.
//
// The thread function receives a *Self, which is the only way to pause, so
// a thread can never be paused from outside. Other goroutines hold the
// *Thread and can resume, cancel, or wait for it.
package thread

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Errors returned by Start.
var (
	ErrRunning = errors.New("thread: already started")
	ErrNilFunc = errors.New("thread: nil function")
)

// Func is the body of a thread. It should return once self.ShouldExit
// reports true or ctx is done.
type Func func(ctx context.Context, self *Self) error

// Thread is a restartable goroutine.
type Thread struct {
	name string
	fn   Func

	mu     sync.Mutex
	group  *errgroup.Group
	cancel context.CancelFunc

	running    atomic.Bool
	shouldExit atomic.Bool
	wake       chan struct{}
}

// New returns an unstarted thread running fn.
func New(name string, fn Func) *Thread {
	return &Thread{
		name: name,
		fn:   fn,
		wake: make(chan struct{}, 1),
	}
}

// Name returns the thread's label.
func (t *Thread) Name() string {
	return t.name
}

// Start launches the thread function. The thread is canceled when parent is
// done. Starting a running thread fails with ErrRunning.
func (t *Thread) Start(parent context.Context) error {
	if t.fn == nil {
		return ErrNilFunc
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running.CompareAndSwap(false, true) {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(parent)
	g, ctx := errgroup.WithContext(ctx)
	t.group = g
	t.cancel = cancel
	t.shouldExit.Store(false)
	// Drop a resume left over from the previous run.
	select {
	case <-t.wake:
	default:
	}

	self := &Self{t: t, ctx: ctx}
	g.Go(func() error {
		defer t.running.Store(false)
		return t.fn(ctx, self)
	})
	return nil
}

// Wait blocks until the thread function returns and returns its error. It
// returns nil for a thread that was never started.
func (t *Thread) Wait() error {
	t.mu.Lock()
	g, cancel := t.group, t.cancel
	t.mu.Unlock()
	if g == nil {
		return nil
	}
	err := g.Wait()
	cancel()
	return err
}

// Cancel asks the thread to exit and cancels its context, which also wakes
// a pending Pause. It does not wait.
func (t *Thread) Cancel() {
	t.shouldExit.Store(true)
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SetShouldExit raises the exit flag without canceling the context, letting
// the function finish its current unit of work.
func (t *Thread) SetShouldExit() {
	t.shouldExit.Store(true)
	t.Resume()
}

// ShouldExit reports whether an exit was requested.
func (t *Thread) ShouldExit() bool {
	return t.shouldExit.Load()
}

// Running reports whether the thread function is executing.
func (t *Thread) Running() bool {
	return t.running.Load()
}

// Resume wakes the thread from Pause. A resume sent while the thread is not
// paused is kept, and the next Pause returns at once.
func (t *Thread) Resume() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Self is the thread's view of itself, handed to its function.
type Self struct {
	t   *Thread
	ctx context.Context
}

// Thread returns the owning thread.
func (s *Self) Thread() *Thread {
	return s.t
}

// ShouldExit reports whether the thread was asked to exit.
func (s *Self) ShouldExit() bool {
	return s.t.ShouldExit() || s.ctx.Err() != nil
}

// Pause blocks until Resume is called, timeout elapses, or the thread is
// canceled. A timeout <= 0 waits without limit. It returns the context
// error on cancellation and nil otherwise.
func (s *Self) Pause(timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-s.t.wake:
		return nil
	case <-expired:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}
