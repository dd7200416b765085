package api

import (
	"errors"
	"io"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/billing"
	"github.com/gofiber/fiber/v2"
)

type StripeHandler struct {
	billing *billing.StripeService
}

func NewStripeHandler(billingService *billing.StripeService) *StripeHandler {
	return &StripeHandler{billing: billingService}
}

type CreateCheckoutSessionRequest struct {
	StripePriceID string `json:"stripe_price_id"`
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type CreateCheckoutSessionResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckoutSession opens a subscription checkout for the current seller.
func (h *StripeHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no user identity"})
	}

	var req CreateCheckoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.StripePriceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "stripe_price_id is required",
		})
	}
	if req.SuccessURL == "" || req.CancelURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "success_url and cancel_url are required",
		})
	}

	session, err := h.billing.CreateCheckoutSession(c.Context(), billing.CreateCheckoutParams{
		UserID:        userID,
		StripePriceID: req.StripePriceID,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create checkout session",
		})
	}

	return c.JSON(CreateCheckoutSessionResponse{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	})
}

// HandleWebhook processes Stripe webhook events
func (h *StripeHandler) HandleWebhook(c *fiber.Ctx) error {
	payload, err := io.ReadAll(c.Context().RequestBodyStream())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read request body",
		})
	}

	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing Stripe-Signature header",
		})
	}

	if err := h.billing.HandleWebhook(c.Context(), payload, signature); err != nil {
		if errors.Is(err, billing.ErrSignatureInvalid) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid webhook signature",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process webhook",
		})
	}

	return c.JSON(fiber.Map{
		"received": true,
	})
}
