// Package cron schedules the recurring background sweeps.
package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	robcron "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sepsiscan/sepsiscan/internal/alerts"
	"github.com/sepsiscan/sepsiscan/internal/checkin"
	"github.com/sepsiscan/sepsiscan/internal/config"
)

// Runner drives the three recurring jobs: the missed check-in sweep, the
// privacy retention sweep and the queue drain for offline check-ins and
// spooled alerts.
type Runner struct {
	cron       *robcron.Cron
	service    *checkin.Service
	dispatcher *alerts.Dispatcher
	logger     *zap.Logger

	mu      sync.RWMutex
	running bool
}

// NewRunner wires the scheduled jobs from the configured cron expressions.
func NewRunner(cfg config.SchedulerConfig, service *checkin.Service, dispatcher *alerts.Dispatcher, logger *zap.Logger) (*Runner, error) {
	r := &Runner{
		cron:       robcron.New(),
		service:    service,
		dispatcher: dispatcher,
		logger:     logger,
	}

	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"missed_checkins", cfg.MissedCheckinCron, r.sweepMissedCheckins},
		{"privacy_sweep", cfg.PrivacySweepCron, r.sweepPrivacy},
		{"queue_drain", cfg.QueueDrainCron, r.drainQueues},
	}
	for _, job := range jobs {
		if _, err := r.cron.AddFunc(job.spec, job.fn); err != nil {
			return nil, fmt.Errorf("invalid cron expression for %s (%q): %w", job.name, job.spec, err)
		}
	}

	return r, nil
}

// Start begins scheduled execution. Queued work left over from a previous
// run is drained immediately rather than waiting for the first tick.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("cron runner already running")
	}
	r.running = true
	r.cron.Start()

	go r.drainQueues()

	r.logger.Info("Cron runner started")
	return nil
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.logger.Info("Cron runner stopped")
}

// IsRunning returns whether the runner is active.
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func (r *Runner) sweepMissedCheckins() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	r.service.SweepMissedCheckins(ctx, time.Now())
}

func (r *Runner) sweepPrivacy() {
	r.service.SweepPrivacy(time.Now())
}

func (r *Runner) drainQueues() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if n := r.service.DrainOffline(ctx); n > 0 {
		r.logger.Info("Drained offline check-ins", zap.Int("count", n))
	}
	if n := r.dispatcher.DrainOutbox(ctx); n > 0 {
		r.logger.Info("Redelivered spooled alerts", zap.Int("count", n))
	}
}
