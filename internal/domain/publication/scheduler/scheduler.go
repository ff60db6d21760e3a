package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DispatchProcessor defines the interface for dispatching due scheduled posts
type DispatchProcessor interface {
	ProcessScheduledPublications(ctx context.Context) error
}

// CachePruner defines the interface for dropping expired link previews
type CachePruner interface {
	PruneCache(ctx context.Context) error
}

// Scheduler periodically dispatches due scheduled posts and prunes the
// link preview cache
type Scheduler struct {
	processor DispatchProcessor
	pruner    CachePruner
	interval  time.Duration
	logger    *slog.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// New creates a new scheduler
func New(processor DispatchProcessor, pruner CachePruner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		processor: processor,
		pruner:    pruner,
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("publication scheduler started", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("publication scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.logger.Debug("processing scheduled posts")

	if err := s.processor.ProcessScheduledPublications(ctx); err != nil {
		s.logger.Error("failed to process scheduled posts", "error", err)
	}

	if s.pruner != nil {
		if err := s.pruner.PruneCache(ctx); err != nil {
			s.logger.Error("failed to prune link preview cache", "error", err)
		}
	}
}
