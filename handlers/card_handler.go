package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brayohmurithidev/donatehub-landing/models"
)

// Checkout starts the hosted card checkout and returns the redirect URL.
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if body.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please select a donation amount"})
	}

	resp, err := h.Client.Checkout(c.UserContext(), models.CheckoutRequest{
		CampaignID: c.Params("id"),
		Amount:     body.Amount,
	})
	if err != nil {
		h.Logger.Error("checkout failed", "campaign_id", c.Params("id"), "err", err)
		return h.backendError(c, "campaign not found", err)
	}
	return c.JSON(resp)
}

// StripePayment forwards a confirmed PaymentIntent for a card donation.
func (h *PaymentHandler) StripePayment(c *fiber.Ctx) error {
	var req models.StripePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if len(req.PaymentIntent) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "payment_intent is required"})
	}

	out, err := h.Client.ProcessStripePayment(c.UserContext(), c.Params("id"), req)
	if err != nil {
		h.Logger.Error("stripe payment failed", "donation_id", c.Params("id"), "err", err)
		return h.backendError(c, "donation not found", err)
	}
	return c.JSON(out)
}

// ThankYou summarises a completed checkout session.
func (h *PaymentHandler) ThankYou(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_id is required"})
	}
	sess, err := h.Client.StripeSession(c.UserContext(), sessionID)
	if err != nil {
		return h.backendError(c, "checkout session not found", err)
	}
	return c.JSON(fiber.Map{
		"amount":         float64(sess.AmountTotal) / 100,
		"campaign_title": sess.CampaignTitle(),
	})
}
