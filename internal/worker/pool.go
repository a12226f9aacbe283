package worker

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/apex-admissions/admission_api/internal/logging"
)

// DefaultSize is used when NewPool receives a non-positive size.
const DefaultSize = 8

var (
	// ErrClosed is returned by Go once Wait has been called.
	ErrClosed = errors.New("worker pool closed")
	// ErrSaturated is returned by Go when every slot is busy.
	ErrSaturated = errors.New("worker pool saturated")
)

// Task is a unit of background work.
type Task func(ctx context.Context) error

// Pool runs fire-and-forget tasks with bounded concurrency. Tasks outlive the
// request that scheduled them: they receive the caller's values but not its
// cancellation, bounded by the pool's per-task timeout.
type Pool struct {
	sema    chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool that runs at most size tasks at once, each limited to timeout.
func NewPool(size int, timeout time.Duration, logger *slog.Logger) *Pool {
	if size < 1 {
		size = DefaultSize
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pool{sema: make(chan struct{}, size), timeout: timeout, logger: logger}
}

// Go schedules task. It never blocks; it fails fast with ErrSaturated or ErrClosed.
func (p *Pool) Go(ctx context.Context, name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.sema <- struct{}{}:
	default:
		p.logger.Warn("worker pool saturated", slog.String("task", name))
		return ErrSaturated
	}

	p.wg.Add(1)
	go p.run(context.WithoutCancel(ctx), name, task)
	return nil
}

func (p *Pool) run(ctx context.Context, name string, task Task) {
	defer p.wg.Done()
	defer func() { <-p.sema }()
	defer func() {
		if rvr := recover(); rvr != nil {
			p.logger.Error("panic in background task", slog.String("task", name), slog.Any("panic", rvr), slog.String("stack", string(debug.Stack())))
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := task(ctx); err != nil {
		p.logger.Error("background task failed", slog.String("task", name), slog.Any("error", err))
	}
}

// Wait stops accepting tasks and blocks until running ones finish or ctx ends.
func (p *Pool) Wait(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
