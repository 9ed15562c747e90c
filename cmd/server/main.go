package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/unclebandit/innkeeper-backend/internal/config"
	"github.com/unclebandit/innkeeper-backend/internal/db"
	"github.com/unclebandit/innkeeper-backend/internal/handler"
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

	// Nudges are best effort: without the broker the worker still polls.
	var publisher queue.Publisher = queue.NoopPublisher{}
	if amqpConn, err := amqp.Dial(cfg.AMQPURL); err != nil {
		log.Println("⚠️ RabbitMQ unavailable, worker will rely on polling:", err)
	} else {
		defer amqpConn.Close()
		p, err := queue.NewAMQPPublisher(amqpConn, cfg.NudgeQueue)
		if err != nil {
			log.Println("⚠️ Failed to open nudge queue, worker will rely on polling:", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	eventHandler := handler.NewEventHandler(eventRepo, ruleRepo, publisher)
	limiter := handler.NewRateLimiter(rate.Limit(cfg.IngestRatePerSec), cfg.IngestBurst)

	r := chi.NewRouter()

	r.With(limiter.Middleware).Post("/events", eventHandler.CreateEvent)
	r.Get("/events/{id}", eventHandler.GetEvent)
	r.Get("/tenants/{tenantID}/events", eventHandler.ListTenantEvents)
	r.Get("/tenants/{tenantID}/rules", eventHandler.ListTenantRules)

	log.Println("🚀 Server running on :" + cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, r))
}
