package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/booking"
	"github.com/imrishuroy/go-salon-bookings/internal/bookingclient"
	"github.com/imrishuroy/go-salon-bookings/internal/checkout"
	"github.com/imrishuroy/go-salon-bookings/internal/validation"
)

type openCheckoutRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

type checkoutHandler struct {
	m      *checkout.Manager
	v      *validatorv10.Validate
	logger *zap.Logger
}

// RegisterCheckoutRoutes registers the booking wizard endpoints of a session.
func RegisterCheckoutRoutes(r gin.IRouter, m *checkout.Manager, v *validatorv10.Validate, logger *zap.Logger) {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &checkoutHandler{m: m, v: v, logger: logger}

	g := r.Group("/sessions/:sid/checkout")
	g.POST("", h.open)
	g.GET("", h.view)
	g.PATCH("", h.apply)
	g.POST("/next", h.next)
	g.POST("/previous", h.previous)
	g.POST("/submit", h.submit)
	g.DELETE("", h.close)
}

func (h *checkoutHandler) open(c *gin.Context) {
	var req openCheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	w, err := h.m.Open(c.Request.Context(), c.Param("sid"), req.ItemID)
	if errors.Is(err, checkout.ErrItemNotInCart) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item_not_in_cart", "detail": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "open_failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, w.View())
}

// wizard writes a 404 and returns nil when the session has no open checkout.
func (h *checkoutHandler) wizard(c *gin.Context) *booking.Wizard {
	w, err := h.m.Wizard(c.Param("sid"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no_checkout", "detail": err.Error()})
		return nil
	}
	return w
}

func (h *checkoutHandler) view(c *gin.Context) {
	if w := h.wizard(c); w != nil {
		c.JSON(http.StatusOK, w.View())
	}
}

func (h *checkoutHandler) apply(c *gin.Context) {
	w := h.wizard(c)
	if w == nil {
		return
	}
	var patch booking.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
		return
	}
	if err := w.Apply(patch); err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.View())
}

// next answers 200 either way; a blocked gate is reported through
// advanced=false and the view's missingFields.
func (h *checkoutHandler) next(c *gin.Context) {
	if w := h.wizard(c); w != nil {
		advanced := w.Next()
		c.JSON(http.StatusOK, gin.H{"advanced": advanced, "view": w.View()})
	}
}

func (h *checkoutHandler) previous(c *gin.Context) {
	if w := h.wizard(c); w != nil {
		moved := w.Previous()
		c.JSON(http.StatusOK, gin.H{"moved": moved, "view": w.View()})
	}
}

func (h *checkoutHandler) submit(c *gin.Context) {
	sid := c.Param("sid")
	conf, err := h.m.Submit(c.Request.Context(), sid)
	if err != nil {
		h.logger.Warn("checkout submit failed", zap.String("session_id", sid), zap.Error(err))
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conf)
}

func (h *checkoutHandler) close(c *gin.Context) {
	h.m.Close(c.Param("sid"))
	c.Status(http.StatusNoContent)
}

// writeWizardError maps wizard and booking service errors to responses.
func writeWizardError(c *gin.Context, err error) {
	var gate *booking.GateError
	var rejected *bookingclient.RejectedError

	switch {
	case errors.Is(err, checkout.ErrNoCheckout):
		c.JSON(http.StatusNotFound, gin.H{"error": "no_checkout", "detail": err.Error()})
	case errors.As(err, &gate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "step_incomplete", "step": gate.Step, "missingFields": gate.Missing})
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "booking_rejected", "fields": rejected.Fields})
	case errors.Is(err, booking.ErrFieldLocked),
		errors.Is(err, booking.ErrIneligibleDate),
		errors.Is(err, booking.ErrUnknownTimeSlot),
		errors.Is(err, booking.ErrInvalidLocation),
		errors.Is(err, booking.ErrInvalidPayment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_field", "detail": err.Error()})
	case errors.Is(err, booking.ErrWizardClosed),
		errors.Is(err, booking.ErrNotAtConfirm),
		errors.Is(err, booking.ErrSubmitInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_state", "detail": err.Error()})
	case errors.Is(err, booking.ErrNoSubmitter):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "booking_unavailable", "detail": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "booking_service_error", "detail": err.Error()})
	}
}
