package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrShutdownTimeout is returned when workers don't stop within timeout.
	ErrShutdownTimeout = errors.New("worker pool shutdown timed out")
	// ErrPoolStopped is returned by Submit after Stop has been called.
	ErrPoolStopped = errors.New("worker pool stopped")
)

// Task is a unit of work run by a pool worker.
type Task = func()

// Pool runs submitted tasks on a fixed number of goroutines. A single pool
// is shared by all requests so concurrency is bounded process-wide.
type Pool struct {
	workers int
	tasks   chan Task
	logger  *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers int
}

// NewPool creates a new worker pool. Call Start before submitting tasks.
func NewPool(cfg Config, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers: cfg.Workers,
		tasks:   make(chan Task),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops all workers. Tasks already accepted run to completion.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

// Submit hands task to a free worker, blocking until one accepts it, ctx is
// done, or the pool is stopped.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-p.ctx.Done():
		return ErrPoolStopped
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolStopped
	}
}

// Do submits task and waits for it to finish.
func (p *Pool) Do(ctx context.Context, task Task) error {
	done := make(chan struct{})
	err := p.Submit(ctx, func() {
		defer close(done)
		task()
	})
	if err != nil {
		return err
	}
	<-done
	return nil
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("worker started")

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("worker stopping")
			return
		case task := <-p.tasks:
			p.run(logger, task)
		}
	}
}

func (p *Pool) run(logger *slog.Logger, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", "panic", r)
		}
	}()
	task()
}

// Workers returns the number of goroutines the pool runs.
func (p *Pool) Workers() int {
	return p.workers
}

// Check reports whether the pool still accepts tasks.
func (p *Pool) Check(_ context.Context) error {
	if p.ctx.Err() != nil {
		return ErrPoolStopped
	}
	return nil
}
