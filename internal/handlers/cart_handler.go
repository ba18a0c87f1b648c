package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-salon-bookings/internal/cart"
	"github.com/imrishuroy/go-salon-bookings/internal/catalog"
	"github.com/imrishuroy/go-salon-bookings/internal/checkout"
	"github.com/imrishuroy/go-salon-bookings/internal/validation"
)

type addItemRequest struct {
	Item     catalog.Entry `json:"item"`
	Quantity int           `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type cartView struct {
	Items          []cart.LineItem `json:"items"`
	TotalItemCount int             `json:"totalItemCount"`
	TotalPrice     float64         `json:"totalPrice"`
}

func viewOf(c *cart.Store) cartView {
	return cartView{
		Items:          c.Items(),
		TotalItemCount: c.TotalItemCount(),
		TotalPrice:     c.TotalPrice(),
	}
}

// RegisterCartRoutes registers the session cart endpoints.
func RegisterCartRoutes(r gin.IRouter, m *checkout.Manager, v *validatorv10.Validate) {
	if v == nil {
		v = validation.New()
	}
	g := r.Group("/sessions/:sid/cart")

	g.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, viewOf(m.Cart(c.Request.Context(), c.Param("sid"))))
	})

	g.POST("/items", func(c *gin.Context) {
		var req addItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		ctx := c.Request.Context()
		store := m.Cart(ctx, c.Param("sid"))
		store.AddItem(ctx, req.Item.LineItem(), req.Quantity)
		c.JSON(http.StatusOK, viewOf(store))
	})

	g.PUT("/items/:id", func(c *gin.Context) {
		var req setQuantityRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		ctx := c.Request.Context()
		store := m.Cart(ctx, c.Param("sid"))
		store.SetQuantity(ctx, c.Param("id"), *req.Quantity)
		c.JSON(http.StatusOK, viewOf(store))
	})

	g.DELETE("/items/:id", func(c *gin.Context) {
		ctx := c.Request.Context()
		store := m.Cart(ctx, c.Param("sid"))
		store.RemoveItem(ctx, c.Param("id"))
		c.JSON(http.StatusOK, viewOf(store))
	})

	g.DELETE("", func(c *gin.Context) {
		ctx := c.Request.Context()
		store := m.Cart(ctx, c.Param("sid"))
		store.Clear(ctx)
		c.JSON(http.StatusOK, viewOf(store))
	})
}
