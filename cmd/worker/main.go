package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/unclebandit/innkeeper-backend/internal/config"
	"github.com/unclebandit/innkeeper-backend/internal/db"
	"github.com/unclebandit/innkeeper-backend/internal/notify"
	"github.com/unclebandit/innkeeper-backend/internal/queue"
	"github.com/unclebandit/innkeeper-backend/internal/repository"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()

	conn, err := db.Open(cfg.DSN())
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	log.Println("✅ Connected to database")

	eventRepo := &repository.EventRepository{DB: conn}
	ruleRepo := &repository.RuleRepository{DB: conn}
	staffRepo := &repository.StaffRepository{DB: conn}
	alertRepo := &repository.AlertRepository{DB: conn}

	dispatcher := &notify.Dispatcher{
		Resolver:    &notify.StaffRecipientResolver{Staff: staffRepo},
		Senders:     notify.NewRegistry(alertRepo),
		SendTimeout: cfg.SendTimeout,
	}
	worker := notify.NewWorker(eventRepo, &notify.StoreRuleResolver{Rules: ruleRepo}, dispatcher)
	worker.BatchSize = cfg.WorkerBatchSize
	worker.EventTimeout = cfg.EventTimeout

	ctx := context.Background()

	// Wake on nudges from the API when the broker is up; the ticker below is
	// the durable fallback either way.
	if amqpConn, err := amqp.Dial(cfg.AMQPURL); err != nil {
		log.Println("⚠️ RabbitMQ unavailable, polling only:", err)
	} else {
		defer amqpConn.Close()
		go func() {
			err := queue.Consume(amqpConn, cfg.NudgeQueue, func(n queue.Nudge) {
				log.Println("📩 nudge for event", n.EventID)
				worker.ProcessBatch(ctx)
			})
			if err != nil {
				log.Println("⚠️ nudge consumer stopped:", err)
			}
		}()
	}

	log.Println("Worker running, polling every", cfg.WorkerPollInterval)
	worker.ProcessBatch(ctx)

	ticker := time.NewTicker(cfg.WorkerPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		if n := worker.ProcessBatch(ctx); n > 0 {
			log.Printf("processed %d event(s)", n)
		}
	}
}
