package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/harentsoaR/lessons-api/internal/errs"
	"github.com/harentsoaR/lessons-api/internal/models"
)

// CreateOrder validates the cart and address, then stores the order as
// submitted. Resubmitting the same payload creates another order.
func (h *Handler) CreateOrder(c *gin.Context) {
	submitted, err := decodeDocument(c)
	switch {
	case errors.Is(err, io.EOF):
		// An empty body is an empty order, so it reports the missing cart.
		submitted = bson.M{}
	case err != nil:
		_ = c.Error(errs.NewValidationError("Invalid request body"))
		return
	}

	order, err := models.NewOrder(submitted)
	if err != nil {
		_ = c.Error(err)
		return
	}

	coll, err := h.Store.Collection(h.opts.Orders)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, err := coll.InsertOne(c.Request.Context(), order)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.Log.Info().Str("order_id", id.Hex()).Msg("order placed")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"orderId": id.Hex(),
	})
}
