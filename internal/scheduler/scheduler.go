package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dashlab/labctl/internal/logger"
)

// Pruner is the maintenance action the scheduler drives.
type Pruner interface {
	Prune(ctx context.Context) error
}

// Scheduler runs periodic engine housekeeping while the status server is up.
type Scheduler struct {
	pruner    Pruner
	cronExpr  string
	cron      *cron.Cron
	running   bool
	mu        sync.RWMutex
}

// New creates a new maintenance scheduler
func New(pruner Pruner, cronExpr string) *Scheduler {
	return &Scheduler{
		pruner:   pruner,
		cronExpr: cronExpr,
		cron:     cron.New(),
	}
}

// Start registers the prune job and starts the cron loop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.cronExpr == "" {
		return fmt.Errorf("no prune schedule configured")
	}

	_, err := s.cron.AddFunc(s.cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		logger.Info("Running scheduled engine prune")
		if err := s.pruner.Prune(ctx); err != nil {
			logger.Error("Scheduled prune failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	logger.Info("Maintenance scheduler started with cron expression: %s", s.cronExpr)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false

	logger.Info("Maintenance scheduler stopped")
}

// IsRunning returns whether the scheduler is active
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
