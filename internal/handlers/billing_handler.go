package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/middleware"
	"github.com/shukatsu-compass/backend/internal/services"
)

type BillingHandler struct {
	Billing *services.BillingService
}

func NewBillingHandler(billing *services.BillingService) *BillingHandler {
	return &BillingHandler{Billing: billing}
}

// Checkout is the POST /billing/checkout endpoint
func (h *BillingHandler) Checkout(c *gin.Context) {
	url, err := h.Billing.CreateCheckout(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.CheckoutResponse{URL: url})
}

// Webhook is the POST /billing/webhook endpoint. It is called by the payment
// provider, not by clients, so it sits outside the identity middleware.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if err := h.Billing.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
