package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/brayohmurithidev/donatehub-landing/tracker"
)

// HandleWebhook takes a donation status change announced by the backend.
// The body is only a hint: the status is re-read from the backend before
// anything changes.
//
// Returns 5xx on transient failure so the sender retries, 200 when the
// change was applied or is intentionally ignored.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	var envelope struct {
		DonationID string `json:"donation_id"`
		CampaignID string `json:"campaign_id"`
	}
	if err := json.Unmarshal(c.Body(), &envelope); err != nil || envelope.DonationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload: missing donation_id"})
	}

	t, ok := h.Session.Lookup(envelope.CampaignID)
	if !ok || t.Snapshot().DonationID != envelope.DonationID {
		t, ok = h.Session.FindDonation(envelope.DonationID)
	}
	if !ok {
		// nothing on screen follows this donation
		h.Logger.Info("webhook: donation not tracked", "donation_id", envelope.DonationID)
		return c.SendStatus(fiber.StatusOK)
	}

	snap, err := t.Refresh(c.UserContext(), envelope.DonationID)
	switch {
	case errors.Is(err, tracker.ErrNotTracking):
		return c.SendStatus(fiber.StatusOK)
	case err != nil:
		h.Logger.Warn("webhook: verify status failed", "donation_id", envelope.DonationID, "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	h.Logger.Info("webhook: processed donation", "donation_id", envelope.DonationID,
		"campaign_id", snap.CampaignID, "status", snap.Status, "state", snap.State)
	return c.JSON(snap)
}
