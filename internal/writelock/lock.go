// Package writelock serializes the write operations of one resource into a
// single total order. Tasks are queued on a channel and drained by one
// worker goroutine, so two writers can never resolve row positions against
// a state the other is about to change.
package writelock

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"certificados/common"
)

// DefaultTimeout bounds how long a caller waits for its task to be queued
// and run to completion.
const DefaultTimeout = 30 * time.Second

type task struct {
	run      func() error
	done     chan error
	queuedAt time.Time
}

// Lock is a per-resource FIFO write queue. Locks for different resources
// are independent; their writes may proceed concurrently.
type Lock struct {
	name    string
	tasks   chan *task
	timeout time.Duration
	log     *zap.Logger
}

// New starts the worker goroutine for a named resource. A non-positive
// timeout falls back to DefaultTimeout.
func New(name string, timeout time.Duration, log *zap.Logger) *Lock {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	l := &Lock{
		name:    name,
		tasks:   make(chan *task),
		timeout: timeout,
		log:     log,
	}
	go l.drain()
	return l
}

// Do queues fn and waits for it to run to completion, returning its error
// to this caller only. Tasks queued at times t1 < t2 execute in that order,
// never interleaved. When the wait exceeds the lock timeout the caller gets
// ErrWriteTimeout, but the task is NOT cancelled: it still runs to
// completion in its queue slot, with nobody waiting on the result.
func (l *Lock) Do(fn func() error) error {
	t := &task{
		run:      fn,
		done:     make(chan error, 1),
		queuedAt: time.Now(),
	}

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case l.tasks <- t:
	case <-timer.C:
		return fmt.Errorf("%w: %s queue full for %s", common.ErrWriteTimeout, l.name, l.timeout)
	}

	select {
	case err := <-t.done:
		return err
	case <-timer.C:
		l.log.Warn("write task abandoned by caller",
			zap.String("resource", l.name),
			zap.Duration("timeout", l.timeout),
		)
		return fmt.Errorf("%w: %s task still running after %s", common.ErrWriteTimeout, l.name, l.timeout)
	}
}

// Close stops the worker once all queued tasks have drained. Only for
// tests; the process-lifetime locks are never closed.
func (l *Lock) Close() {
	close(l.tasks)
}

func (l *Lock) drain() {
	for t := range l.tasks {
		err := runSafe(t.run)
		wait := time.Since(t.queuedAt)
		if wait > l.timeout {
			// The caller already gave up; the mutation (if any) still
			// happened. Surface it so abandoned writes are observable.
			l.log.Warn("abandoned write task completed",
				zap.String("resource", l.name),
				zap.Duration("queuedFor", wait),
				zap.Error(err),
			)
		}
		// Buffered, so delivery never blocks the chain even when the
		// caller timed out.
		t.done <- err
	}
}

// runSafe converts a panicking task into an error; a failing write must
// never wedge the lock.
func runSafe(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write task panicked: %v", r)
		}
	}()
	return fn()
}
