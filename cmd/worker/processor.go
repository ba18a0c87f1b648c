package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/aws"
	"github.com/imrishuroy/go-salon-bookings/internal/bookings"
	"github.com/imrishuroy/go-salon-bookings/internal/idempotency"
)

// notifyPrefix namespaces the idempotency keys that guard the confirmed metric.
const notifyPrefix = "notify:"

// ProcessorConfig names the tables and metric namespace the worker touches.
type ProcessorConfig struct {
	IdempotencyTable string
	BookingsTable    string
	TTLWindow        time.Duration
	MetricsNamespace string
}

// Processor handles SQS messages and confirms bookings.
type Processor struct {
	idempStore   *idempotency.Store
	bookingStore *bookings.Store
	metrics      *aws.Metrics
	logger       *zap.Logger
}

// NewProcessor creates a new worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, cfg ProcessorConfig, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		idempStore:   idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.TTLWindow),
		bookingStore: bookings.NewStore(clients.DynamoDB, cfg.BookingsTable),
		metrics:      aws.NewMetrics(clients.CloudWatch, cfg.MetricsNamespace),
		logger:       logger,
	}
}

// Handle receives an SQS batch event and processes each message.
// The first failure is returned so Lambda retries the batch and SQS
// eventually moves the message to the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	p.logger.Debug("received batch", zap.Int("records", len(ev.Records)))
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Error("worker error", zap.String("message_id", rec.MessageId), zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg aws.BookingMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.BookingID == "" {
		return errors.New("message has no booking_id")
	}

	log := p.logger.With(
		zap.String("booking_id", msg.BookingID),
		zap.String("idempotency_key", msg.IdempotencyKey),
		zap.String("correlation_id", msg.CorrelationID),
	)
	log.Info("received booking")

	b, err := p.bookingStore.Get(ctx, msg.BookingID)
	if err != nil {
		return fmt.Errorf("fetch booking: %w", err)
	}
	if b == nil {
		return fmt.Errorf("booking not found: %s", msg.BookingID)
	}

	err = p.bookingStore.UpdateStatus(ctx, msg.BookingID, bookings.StatusPending, bookings.StatusProcessing)
	if errors.Is(err, bookings.ErrStatusMismatch) {
		current, getErr := p.bookingStore.Get(ctx, msg.BookingID)
		if getErr != nil {
			return fmt.Errorf("re-read booking: %w", getErr)
		}
		if current == nil {
			return fmt.Errorf("booking vanished: %s", msg.BookingID)
		}
		switch current.Status {
		case bookings.StatusConfirmed:
			// a previous delivery may have stopped before recording the outcome
			log.Info("booking already confirmed")
			return p.recordConfirmed(ctx, msg, current, log)
		case bookings.StatusFailed:
			return fmt.Errorf("booking=%s is already FAILED", msg.BookingID)
		case bookings.StatusProcessing:
			log.Info("duplicate event for booking in progress")
			return nil
		default:
			return fmt.Errorf("unexpected status for booking=%s: %s", msg.BookingID, current.Status)
		}
	}
	if err != nil {
		return fmt.Errorf("move to PROCESSING: %w", err)
	}

	if err := p.bookingStore.IncrementAttempts(ctx, msg.BookingID); err != nil {
		log.Warn("increment attempts failed", zap.Error(err))
	}

	if err := p.bookingStore.UpdateStatus(ctx, msg.BookingID, bookings.StatusProcessing, bookings.StatusConfirmed); err != nil {
		return fmt.Errorf("move to CONFIRMED: %w", err)
	}

	if err := p.recordConfirmed(ctx, msg, b, log); err != nil {
		return err
	}
	log.Info("booking confirmed", zap.String("service_id", b.ServiceID))
	return nil
}

// recordConfirmed stores the confirmed response for replays and counts the
// booking. Both steps are safe to repeat on redelivery.
func (p *Processor) recordConfirmed(ctx context.Context, msg aws.BookingMessage, b *bookings.Booking, log *zap.Logger) error {
	if msg.IdempotencyKey != "" {
		response, _ := json.Marshal(map[string]string{"bookingId": msg.BookingID, "status": bookings.StatusConfirmed})
		if err := p.idempStore.MarkDone(ctx, msg.IdempotencyKey, string(response), http.StatusOK); err != nil {
			return fmt.Errorf("mark idempotency done: %w", err)
		}
	}
	p.countConfirmed(ctx, b, log)
	return nil
}

// countConfirmed emits BookingsConfirmed at most once per booking.
func (p *Processor) countConfirmed(ctx context.Context, b *bookings.Booking, log *zap.Logger) {
	claimed, err := p.idempStore.CreateIfNotExists(ctx, notifyPrefix+b.BookingID, b.BookingID)
	if err != nil {
		log.Warn("claim metric key failed", zap.Error(err))
		return
	}
	if !claimed {
		return
	}
	if err := p.metrics.Count(ctx, aws.MetricBookingsConfirmed, b.ServiceID, 1); err != nil {
		log.Warn("emit metric failed", zap.Error(err))
	}
}
