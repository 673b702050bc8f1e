package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"courtpilot/config"
	"courtpilot/models"
	"courtpilot/services/booking"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeBookingRun = "booking:run"

// runTimeout bounds one workflow execution end to end: navigation, extraction,
// matching and the reservation dialog.
const runTimeout = 5 * time.Minute

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient returns the asynq client used to hand runs to the worker.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(queueRedisOpt())
}

// EnqueueRun queues one booking run for execution. MaxRetry is zero on
// purpose: a failed run must never re-attempt a reservation on its own, the
// user resubmits instead.
func EnqueueRun(ctx context.Context, client *asynq.Client, runID string) error {
	payload, err := json.Marshal(models.RunTaskPayload{RunID: runID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeBookingRun, payload)
	_, err = client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.MaxRetry(0),
		asynq.Timeout(runTimeout),
	)
	return err
}

// InitRunWorker runs the async worker in background.
func InitRunWorker(engine booking.BookingEngine) {
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			// One Chrome session serves all runs; concurrent runs would fight
			// over the page.
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingRun, handleRunTask(engine))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[RunWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[RunWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[RunWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleRunTask(engine booking.BookingEngine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.RunTaskPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[RunHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		log.Printf("[RunHandler] 🏸 Executing booking run %s", p.RunID)

		// Run-level failures land on the run's terminal status; an error here
		// means the run record itself was unreachable.
		run, err := engine.ExecuteRun(ctx, p.RunID)
		if err != nil {
			log.Printf("[RunHandler] ❌ Run %s could not be executed: %v", p.RunID, err)
			return err
		}

		log.Printf("[RunHandler] ✅ Run %s finished: %s", run.RunID, run.Status)
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[RunWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
