package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-signage/internal/settings"
)

// Reloader pulls persisted settings into the live store.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// Scheduler periodically syncs persisted settings into the live store, so
// edits made on another display (or straight in the database) reach this one.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reloader  Reloader
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(reloader Reloader, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		reloader:  reloader,
		interval:  interval,
		timeout:   10 * time.Second,
	}
}

// Start schedules the sync job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: settings sync disabled; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.syncSettings)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) syncSettings() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	changed, err := s.reloader.Reload(ctx)
	switch {
	case errors.Is(err, settings.ErrNoSettings):
		// Nothing persisted yet; the live store keeps its value.
	case err != nil:
		log.Printf("scheduler: settings sync failed: %v", err)
	case changed:
		log.Println("scheduler: settings changed upstream; applied")
	}
}
