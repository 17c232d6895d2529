package handlers

import (
	"errors"
	"log/slog"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/middleware"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	subscriptions *services.SubscriptionService
}

func NewPaymentHandler(subscriptions *services.SubscriptionService) *PaymentHandler {
	return &PaymentHandler{subscriptions: subscriptions}
}

// CreatePayment returns the provider's checkout response verbatim.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	raw, err := h.subscriptions.CreateCheckout(c.UserContext(), middleware.CurrentUser(c).ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	resp, err := h.subscriptions.Reconcile(c.UserContext(), c.Params("orderCode"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Webhook acknowledges verified provider callbacks. Provider lookups that
// fail are logged and acknowledged; the status endpoint can reconcile later.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	err := h.subscriptions.HandleWebhook(c.UserContext(), c.Body())
	switch {
	case err == nil:
		slog.Info("payment webhook processed", "request_id", requestID(c))
	case errors.Is(err, services.ErrUnauthorized):
		slog.Warn("payment webhook rejected", "request_id", requestID(c), "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook signature",
		})
	case errors.Is(err, services.ErrUpstream):
		slog.Warn("payment webhook reconcile deferred", "request_id", requestID(c), "error", err)
	default:
		return respondError(c, err)
	}
	return c.JSON(dto.WebhookAck{Success: true})
}
