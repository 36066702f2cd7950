// Package queue serializes outbound fetches into a single-flight FIFO with
// randomized pacing between items and exponential backoff after failures.
package queue

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Options configures queue pacing.
type Options struct {
	// MinDelay and MaxDelay bound the random delay inserted between items.
	MinDelay time.Duration
	MaxDelay time.Duration
	// BackoffUnit scales the post-failure backoff: 2^backlog * BackoffUnit.
	BackoffUnit time.Duration
}

// DefaultOptions returns the production pacing values.
func DefaultOptions() Options {
	return Options{
		MinDelay:    1500 * time.Millisecond,
		MaxDelay:    3500 * time.Millisecond,
		BackoffUnit: time.Second,
	}
}

// Task is a unit of work executed by the queue worker.
type Task[T any] func(ctx context.Context) (T, error)

type result[T any] struct {
	val T
	err error
}

// Handle resolves with the outcome of a single submitted task.
type Handle[T any] struct {
	done chan result[T]
}

// Wait blocks until the task finishes or ctx is cancelled. Cancellation
// abandons the handle; the queue still runs the task to completion.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case res := <-h.done:
		return res.val, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

type item[T any] struct {
	ctx  context.Context
	task Task[T]
	done chan result[T]
}

// Queue is a single-worker FIFO. Exactly one task is in flight at a time;
// execution order equals submission order.
type Queue[T any] struct {
	opts Options

	mu       sync.Mutex
	items    []*item[T]
	draining bool
}

// New creates a queue. Zero option fields fall back to DefaultOptions.
func New[T any](opts Options) *Queue[T] {
	def := DefaultOptions()
	if opts.MinDelay <= 0 {
		opts.MinDelay = def.MinDelay
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = def.BackoffUnit
	}
	return &Queue[T]{opts: opts}
}

// Submit appends task to the tail of the queue and returns a handle for its
// result. The drain worker is started on demand; a Submit while the worker
// is already running only appends.
func (q *Queue[T]) Submit(ctx context.Context, task Task[T]) *Handle[T] {
	it := &item[T]{ctx: ctx, task: task, done: make(chan result[T], 1)}

	q.mu.Lock()
	q.items = append(q.items, it)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
	return &Handle[T]{done: it.done}
}

// Len reports the number of items not yet completed.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) drain() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		it := q.items[0]
		q.mu.Unlock()

		val, err := it.task(it.ctx)
		it.done <- result[T]{val: val, err: err}

		if err != nil {
			// The failed item is still at the head here, so the backlog
			// count includes it.
			q.mu.Lock()
			backlog := len(q.items)
			q.mu.Unlock()
			time.Sleep(q.backoff(backlog))
		}

		q.mu.Lock()
		q.items = q.items[1:]
		q.mu.Unlock()

		time.Sleep(q.randomDelay())
	}
}

func (q *Queue[T]) backoff(backlog int) time.Duration {
	return time.Duration(1<<uint(backlog)) * q.opts.BackoffUnit
}

func (q *Queue[T]) randomDelay() time.Duration {
	spread := q.opts.MaxDelay - q.opts.MinDelay
	if spread <= 0 {
		return q.opts.MinDelay
	}
	return q.opts.MinDelay + time.Duration(rand.Int63n(int64(spread)))
}
