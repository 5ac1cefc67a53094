package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/brayohmurithidev/donatehub-landing/apiclient"
	"github.com/brayohmurithidev/donatehub-landing/models"
	"github.com/brayohmurithidev/donatehub-landing/tracker"
)

// donationForm is the JSON body of POST /campaigns/:id/donations.
type donationForm struct {
	TenantID      string  `json:"tenant_id"`
	Amount        float64 `json:"amount"`
	DonorName     string  `json:"donor_name"`
	DonorPhone    string  `json:"donor_phone"`
	DonorEmail    string  `json:"donor_email"`
	Message       string  `json:"message"`
	PaymentMethod string  `json:"payment_method"`
	IsAnonymous   bool    `json:"is_anonymous"`
}

func (f donationForm) request(campaignID string) models.DonationRequest {
	method, _ := models.ParsePaymentMethod(f.PaymentMethod)
	if f.PaymentMethod == "" {
		method = models.MethodMobileMoney
	}
	return models.DonationRequest{
		CampaignID:  campaignID,
		TenantID:    f.TenantID,
		Amount:      f.Amount,
		DonorName:   f.DonorName,
		DonorPhone:  f.DonorPhone,
		DonorEmail:  f.DonorEmail,
		Message:     f.Message,
		Method:      method,
		IsAnonymous: f.IsAnonymous,
	}
}

// campaignID copies the route id out of the request buffer; trackers and
// stores keep it after the handler returns.
func campaignID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func (h *PaymentHandler) mount(c *fiber.Ctx) (*tracker.Tracker, error) {
	id := campaignID(c)
	t, err := h.Session.Mount(c.UserContext(), id)
	if err != nil {
		h.Logger.Error("mount tracker failed", "campaign_id", id, "err", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load payment tracking: " + err.Error()})
	}
	return t, nil
}

// GetTracking mounts the campaign page and returns its current view.
func (h *PaymentHandler) GetTracking(c *fiber.Ctx) error {
	t, err := h.mount(c)
	if t == nil {
		return err
	}
	return c.JSON(t.Snapshot())
}

func (h *PaymentHandler) CreateDonation(c *fiber.Ctx) error {
	var form donationForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	req := form.request(campaignID(c))

	if err := req.Validate(); err != nil {
		return h.trackerError(c, err)
	}
	if req.TenantID == "" {
		campaign, err := h.Client.GetCampaign(c.UserContext(), req.CampaignID)
		if err != nil {
			return h.backendError(c, "campaign not found", err)
		}
		req.TenantID = campaign.Tenant.ID
	}

	t, err := h.mount(c)
	if t == nil {
		return err
	}
	res, err := t.Submit(c.UserContext(), req)
	if err != nil {
		return h.trackerError(c, err)
	}
	status := fiber.StatusOK
	if res.Tracking {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(fiber.Map{
		"result":   res,
		"tracking": t.Snapshot(),
	})
}

// checkRequest optionally carries the phone number used for the fallback
// lookup.
type checkRequest struct {
	Phone string `json:"phone"`
}

func (h *PaymentHandler) CheckStatus(c *fiber.Ctx) error {
	var body checkRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
		}
	}
	t, err := h.mount(c)
	if t == nil {
		return err
	}
	snap, err := t.CheckNow(c.UserContext(), body.Phone)
	if err != nil {
		return h.trackerError(c, err)
	}
	return c.JSON(snap)
}

func (h *PaymentHandler) ResetTracking(c *fiber.Ctx) error {
	t, err := h.mount(c)
	if t == nil {
		return err
	}
	if err := t.Reset(c.UserContext()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset: " + err.Error()})
	}
	return c.JSON(t.Snapshot())
}

func (h *PaymentHandler) ClearHistory(c *fiber.Ctx) error {
	t, err := h.mount(c)
	if t == nil {
		return err
	}
	if err := t.ClearHistory(c.UserContext()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to clear payment history: " + err.Error()})
	}
	return c.JSON(t.Snapshot())
}

func (h *PaymentHandler) UnloadTracking(c *fiber.Ctx) error {
	if err := h.Session.Unmount(c.UserContext(), campaignID(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unload: " + err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// trackerError maps tracker and validation failures onto responses.
func (h *PaymentHandler) trackerError(c *fiber.Ctx, err error) error {
	var verrs models.ValidationErrors
	var subErr *tracker.SubmissionError
	switch {
	case errors.As(err, &verrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed", "fields": verrs})
	case errors.Is(err, tracker.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, tracker.ErrNotTracking), errors.Is(err, tracker.ErrDonationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &subErr):
		status := fiber.StatusBadGateway
		if apiclient.IsValidation(err) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{"error": subErr.Message})
	}
	h.Logger.Error("tracker request failed", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
}
