package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/aws"
	"github.com/imrishuroy/go-salon-bookings/internal/config"
	"github.com/imrishuroy/go-salon-bookings/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		lg.Fatal("failed to init aws clients", zap.Error(err))
	}

	p := NewProcessor(clients, ProcessorConfig{
		IdempotencyTable: cfg.IdempotencyTable,
		BookingsTable:    cfg.BookingsTable,
		TTLWindow:        cfg.IdempotencyTTL,
		MetricsNamespace: cfg.MetricsNamespace,
	}, lg.Named("worker"))

	// RUN_LOCAL pushes a single simulated record through the processor.
	if cfg.RunLocal {
		body := cfg.LocalSQSBody
		if body == "" {
			body = `{"booking_id":"local-booking-1","idempotency_key":"local-key-1"}`
		}
		event := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "local-1", Body: body}}}
		if err := p.Handle(ctx, event); err != nil {
			lg.Fatal("local handler error", zap.Error(err))
		}
		return
	}

	lambda.Start(p.Handle)
}
