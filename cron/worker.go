package cron

import (
	"context"
	"log"
	"time"

	"consultly/config"
	"consultly/services/booking"

	"github.com/hibiken/asynq"
)

const TypeWaitlistSweep = "waitlist:sweep"

// InitWaitlistSweeper runs the periodic waitlist-expiry sweep in the
// background. Promotion already skips expired entries lazily; the sweep
// keeps queues from growing unbounded when nobody leaves a session.
func InitWaitlistSweeper(svc *booking.DefaultBookingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeWaitlistSweep, handleSweepTask(svc))

	go func() {
		log.Println("[WaitlistSweeper] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[WaitlistSweeper] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[WaitlistSweeper] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go scheduleSweeps(redisOpts)
}

func handleSweepTask(svc *booking.DefaultBookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		purged, err := svc.PurgeExpiredWaitlistEntries(ctx)
		if err != nil {
			log.Printf("[WaitlistSweeper] sweep failed: %v", err)
			return err
		}
		if purged > 0 {
			log.Printf("[WaitlistSweeper] purged %d expired waitlist entries", purged)
		}
		return nil
	}
}

// scheduleSweeps enqueues a sweep task on a fixed interval.
func scheduleSweeps(redisOpts asynq.RedisClientOpt) {
	interval := time.Duration(config.AppConfig.WaitlistSweepMinutes) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	client := asynq.NewClient(redisOpts)
	defer client.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		task := asynq.NewTask(TypeWaitlistSweep, nil)
		if _, err := client.Enqueue(task, asynq.MaxRetry(1)); err != nil {
			log.Printf("[WaitlistSweeper] failed to enqueue sweep: %v", err)
		}
	}
}
