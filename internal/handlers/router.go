package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/checkout"
	"github.com/imrishuroy/go-salon-bookings/internal/validation"
)

// RouterConfig wires the API. Bookings may be nil when this process only
// serves carts and checkouts and submits to a remote booking service.
type RouterConfig struct {
	Logger            *zap.Logger
	MaxRequestsPerMin int
	Checkout          *checkout.Manager
	Bookings          *BookingsConfig
	Validator         *validatorv10.Validate
}

// NewRouter builds the gin engine with middleware and every route group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := cfg.Validator
	if v == nil {
		v = validation.New()
	}

	r := gin.New()
	r.Use(Recovery(logger))
	r.Use(RequestLogger(logger))
	r.Use(CORS())
	r.Use(RateLimit(cfg.MaxRequestsPerMin, logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Checkout != nil {
		RegisterCartRoutes(r, cfg.Checkout, v)
		RegisterCheckoutRoutes(r, cfg.Checkout, v, logger)
	}
	if cfg.Bookings != nil {
		b := *cfg.Bookings
		if b.Validator == nil {
			b.Validator = v
		}
		if b.Logger == nil {
			b.Logger = logger
		}
		RegisterBookingsRoutes(r, b)
	}
	return r
}
