package dispatch

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrStopped is returned when a task is offered to a loop that is no longer running
var ErrStopped = errors.New("dispatch loop stopped")

// Loop runs tasks one at a time on a single goroutine.
// Everything posted to the same loop is serialized in FIFO order.
//
// Until Run is called the loop has no goroutine of its own: tasks posted
// before then are held back, and Do executes them followed by its own
// function on the caller's goroutine. Do and Post called from a task that
// is running on the loop never wait for the loop.
type Loop struct {
	logger *zap.Logger
	tasks  chan func()
	done   chan struct{}

	// owner is the id of the goroutine currently acting as the loop, 0 if none
	owner atomic.Int64
	// inline serializes callers executing tasks before Run has started
	inline sync.Mutex

	mu      sync.Mutex
	pending []func() // guarded by mu
	running bool
	stopped bool
}

// NewLoop creates a loop with room for backlog pending tasks
func NewLoop(logger *zap.Logger, backlog int) *Loop {
	if backlog < 0 {
		backlog = 0
	}
	return &Loop{
		logger: logger,
		tasks:  make(chan func(), backlog),
		done:   make(chan struct{}),
	}
}

// Run executes tasks until ctx is cancelled.
// A loop can be run only once; tasks still queued when it returns are discarded.
func (l *Loop) Run(ctx context.Context) error {
	// Wait for a caller that is executing tasks inline
	l.inline.Lock()
	l.mu.Lock()
	if l.running || l.stopped {
		l.mu.Unlock()
		l.inline.Unlock()
		return errors.New("dispatch loop already started")
	}
	l.running = true
	l.owner.Store(goroutineID())
	held := l.pending
	l.pending = nil
	l.mu.Unlock()
	l.inline.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.stopped = true
		l.owner.Store(0)
		discarded := len(l.pending) + len(l.tasks)
		l.pending = nil
		l.mu.Unlock()
		close(l.done)
		l.logger.Debug("Dispatch loop stopped", zap.Int("discarded", discarded))
	}()

	l.logger.Debug("Dispatch loop started")

	for _, task := range held {
		if ctx.Err() != nil {
			return nil
		}
		l.execute(task)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		// Overflow from tasks posting to their own loop runs after the backlog
		select {
		case task := <-l.tasks:
			l.execute(task)
			continue
		default:
		}
		if task, ok := l.nextPending(); ok {
			l.execute(task)
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case task := <-l.tasks:
			l.execute(task)
		}
	}
}

// execute runs a task, keeping the loop alive if it panics
func (l *Loop) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Dispatch task panicked", zap.Any("panic", r))
		}
	}()
	task()
}

func (l *Loop) nextPending() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil, false
	}
	task := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	return task, true
}

// onLoop reports whether the caller is the goroutine executing the loop's tasks
func (l *Loop) onLoop() bool {
	owner := l.owner.Load()
	return owner != 0 && owner == goroutineID()
}

// Post enqueues fn without waiting for it to run.
// It blocks while the backlog is full and never drops a task.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	if !l.running {
		l.pending = append(l.pending, fn)
		l.mu.Unlock()
		return nil
	}
	if l.onLoop() {
		// The loop cannot drain the backlog while it is running this caller
		if len(l.pending) == 0 {
			select {
			case l.tasks <- fn:
				l.mu.Unlock()
				return nil
			default:
			}
		}
		l.pending = append(l.pending, fn)
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do runs fn on the loop and waits for it to finish.
// Called from a task already running on the loop, fn runs immediately.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.onLoop() {
		fn()
		return nil
	}

	l.mu.Lock()
	stopped, running := l.stopped, l.running
	l.mu.Unlock()

	if stopped {
		return ErrStopped
	}
	if !running {
		if handled, err := l.doInline(fn); handled {
			return err
		}
	}

	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// The loop may have taken the task right before stopping
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// doInline makes the caller act as the loop while Run has not started.
// It drains the held-back tasks first so fn observes their effects.
// handled is false when Run started in the meantime.
func (l *Loop) doInline(fn func()) (handled bool, err error) {
	l.inline.Lock()
	defer l.inline.Unlock()

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return true, ErrStopped
	}
	if l.running {
		l.mu.Unlock()
		return false, nil
	}
	l.owner.Store(goroutineID())
	l.mu.Unlock()

	defer l.owner.Store(0)

	for {
		task, ok := l.nextPending()
		if !ok {
			break
		}
		l.execute(task)
	}
	l.execute(fn)
	return true, nil
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// goroutineID parses the current goroutine's id from its stack header,
// which always starts with "goroutine <id> [".
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))
	if len(fields) == 0 {
		return 0
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
