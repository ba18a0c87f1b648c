package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/aws"
	"github.com/imrishuroy/go-salon-bookings/internal/booking"
	"github.com/imrishuroy/go-salon-bookings/internal/bookings"
	"github.com/imrishuroy/go-salon-bookings/internal/idempotency"
	"github.com/imrishuroy/go-salon-bookings/internal/validation"
)

// BookingsConfig groups dependencies for the bookings handler.
type BookingsConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	Metrics          *aws.Metrics
	IdempotencyTable string
	BookingsTable    string
	QueueURL         string
	TTLWindow        time.Duration
	Validator        *validatorv10.Validate
	Logger           *zap.Logger
}

type bookingsHandler struct {
	cfg        BookingsConfig
	v          *validatorv10.Validate
	idempStore *idempotency.Store
	store      *bookings.Store
	publisher  *aws.Publisher
	logger     *zap.Logger
}

// RegisterBookingsRoutes registers POST /bookings and GET /bookings/:id.
func RegisterBookingsRoutes(r gin.IRouter, cfg BookingsConfig) {
	h := &bookingsHandler{
		cfg:        cfg,
		v:          cfg.Validator,
		idempStore: idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow),
		store:      bookings.NewStore(cfg.DynamoDBClient, cfg.BookingsTable),
		publisher:  aws.NewPublisher(cfg.SQSClient, cfg.QueueURL),
		logger:     cfg.Logger,
	}
	if h.v == nil {
		h.v = validation.New()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	r.POST("/bookings", h.create)
	r.GET("/bookings/:id", h.get)
}

func (h *bookingsHandler) create(c *gin.Context) {
	ctx := c.Request.Context()

	var req validation.CreateBookingRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		// BindAndValidate already wrote a 400
		return
	}

	idempKey := c.GetHeader("Idempotency-Key")
	if idempKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
		return
	}
	log := h.logger.With(zap.String("idempotency_key", idempKey))

	bookingID := uuid.NewString()
	now := time.Now().UTC()

	idempItem := idempotency.IdempotencyRecord{
		IdempotencyKey: idempKey,
		Status:         idempotency.StatusInProgress,
		BookingID:      bookingID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(h.cfg.TTLWindow).Unix(),
	}

	b := bookings.Booking{
		BookingID:      bookingID,
		ServiceID:      req.ServiceID,
		Status:         bookings.StatusPending,
		Quantity:       req.Quantity,
		TotalPrice:     req.TotalPrice,
		Details:        detailsFrom(req.BookingData),
		IdempotencyKey: idempKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := h.store.CreateWithIdempotencyTransaction(ctx, h.cfg.IdempotencyTable, idempItem, b, h.cfg.TTLWindow)
	if errors.Is(err, bookings.ErrDuplicateKey) {
		h.replay(c, idempKey, log)
		return
	}
	if err != nil {
		log.Error("create booking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed", "detail": err.Error()})
		return
	}

	if err := h.enqueue(ctx, bookingID, idempKey, c.GetHeader("X-Request-Id")); err != nil {
		log.Error("enqueue booking failed", zap.String("booking_id", bookingID), zap.Error(err))
		_ = h.idempStore.MarkFailed(ctx, idempKey, fmt.Sprintf("sqs_send_failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
		return
	}

	if err := h.cfg.Metrics.Count(ctx, aws.MetricBookingsCreated, req.ServiceID, 1); err != nil {
		log.Warn("emit metric failed", zap.Error(err))
	}
	log.Info("booking created", zap.String("booking_id", bookingID), zap.String("service_id", req.ServiceID))
	h.respondCreated(c, idempKey, bookingID)
}

// replay answers a request whose Idempotency-Key was already used.
func (h *bookingsHandler) replay(c *gin.Context, idempKey string, log *zap.Logger) {
	ctx := c.Request.Context()

	rec, err := h.idempStore.Get(ctx, idempKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return
	}
	if rec == nil {
		// the key expired between the transaction and the read
		c.JSON(http.StatusConflict, gin.H{"error": "idempotency_key_conflict"})
		return
	}

	switch rec.Status {
	case idempotency.StatusDone:
		if status, body, ok := rec.StoredResponse(); ok {
			c.Data(status, "application/json", body)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookingId": rec.BookingID, "status": bookings.StatusPending})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "bookingId": rec.BookingID})
	case idempotency.StatusFailed:
		// the booking row exists; only the enqueue failed, so retry it
		if err := h.enqueue(ctx, rec.BookingID, idempKey, c.GetHeader("X-Request-Id")); err != nil {
			log.Error("re-enqueue booking failed", zap.String("booking_id", rec.BookingID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
			return
		}
		log.Info("booking re-enqueued", zap.String("booking_id", rec.BookingID))
		h.respondCreated(c, idempKey, rec.BookingID)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
}

func (h *bookingsHandler) enqueue(ctx context.Context, bookingID, idempKey, correlationID string) error {
	return h.publisher.PublishBooking(ctx, aws.BookingMessage{
		BookingID:      bookingID,
		IdempotencyKey: idempKey,
		CorrelationID:  correlationID,
	})
}

// respondCreated stores the 201 body for replays and writes it.
func (h *bookingsHandler) respondCreated(c *gin.Context, idempKey, bookingID string) {
	body := gin.H{"bookingId": bookingID, "status": bookings.StatusPending}
	raw, _ := json.Marshal(body)
	if err := h.idempStore.MarkDone(c.Request.Context(), idempKey, string(raw), http.StatusCreated); err != nil {
		h.logger.Warn("mark idempotency done failed", zap.String("idempotency_key", idempKey), zap.Error(err))
	}

	c.Header("Location", fmt.Sprintf("/bookings/%s", bookingID))
	c.JSON(http.StatusCreated, body)
}

func (h *bookingsHandler) get(c *gin.Context) {
	b, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed", "detail": err.Error()})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking_not_found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func detailsFrom(d validation.BookingDataRequest) bookings.Details {
	out := bookings.Details{
		SelectedDate:        d.SelectedDate,
		SelectedTime:        d.SelectedTime,
		ServiceLocation:     d.ServiceLocation,
		FullName:            d.FullName,
		Phone:               d.Phone,
		Email:               d.Email,
		SpecialInstructions: d.SpecialInstructions,
		PaymentMethod:       d.PaymentMethod,
	}
	if d.ServiceLocation == string(booking.LocationHome) {
		out.Address = d.Address
		out.City = d.City
		out.Pincode = d.Pincode
	}
	return out
}
