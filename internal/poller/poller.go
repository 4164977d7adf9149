// Package poller runs a task on a fixed interval for as long as its owner
// keeps it started.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of periodic work. Errors are logged and polling continues.
type Task func(ctx context.Context) error

// Poller runs a Task immediately on Start and then once per interval.
type Poller struct {
	name     string
	interval time.Duration
	task     Task
	logger   *zap.SugaredLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped poller
func New(name string, interval time.Duration, task Task, logger *zap.SugaredLogger) *Poller {
	return &Poller{name: name, interval: interval, task: task, logger: logger}
}

// Start begins polling in the background. It returns an error if the poller
// is already running or the interval is not positive.
func (p *Poller) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errors.New("poller already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
	return nil
}

// Stop cancels polling and waits for an in-flight task to return.
// It is safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial run
	p.run(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Infow("Poller stopped", "poller", p.name)
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	if err := p.task(ctx); err != nil && ctx.Err() == nil {
		p.logger.Warnw("Poll failed", "poller", p.name, "error", err)
	}
}
