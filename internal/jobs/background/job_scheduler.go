// Package background runs the scheduled maintenance of the pricing engine.
package background

import (
	"context"
	"log"
	"sync"
	"time"

	"bodegamart/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler owns the recurring promotion-expiry sweep. Promotions created
// by bulk operations auto-deactivate once their end date passes; the sweep
// is what actually flips them off.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	productRepo   repositories.ProductRepository
	sweepInterval time.Duration
	jobs          map[string]gocron.Job
	mu            sync.RWMutex
}

func NewJobScheduler(productRepo repositories.ProductRepository, sweepInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		productRepo:   productRepo,
		sweepInterval: sweepInterval,
		jobs:          make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.sweepInterval),
		gocron.NewTask(js.SweepExpiredPromotions, context.Background()),
		gocron.WithName("promotion-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	js.mu.Lock()
	js.jobs["promotion-expiry-sweep"] = sweepJob
	js.mu.Unlock()
	return nil
}

// SweepExpiredPromotions deactivates every auto-deactivating promotion whose
// end date has passed. Exported so callers can trigger a sweep outside the
// schedule.
func (js *JobScheduler) SweepExpiredPromotions(ctx context.Context) {
	count, err := js.productRepo.DeactivateExpiredPromotions(ctx, time.Now())
	if err != nil {
		log.Printf("ERROR: promotion expiry sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Promotion expiry sweep deactivated %d promotions", count)
	}
}
