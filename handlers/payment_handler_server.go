// Package handlers exposes the donation tracker and the backend catalog
// over a local fiber API.
package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/brayohmurithidev/donatehub-landing/apiclient"
	"github.com/brayohmurithidev/donatehub-landing/models"
	"github.com/brayohmurithidev/donatehub-landing/refstore"
	"github.com/brayohmurithidev/donatehub-landing/tracker"
)

// Backend is the part of the donation API the handlers call.
type Backend interface {
	tracker.API
	Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
	ProcessStripePayment(ctx context.Context, donationID string, req models.StripePaymentRequest) (map[string]interface{}, error)
	StripeSession(ctx context.Context, sessionID string) (*models.StripeSession, error)
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, campaignID string) (*models.Campaign, error)
	ListTenants(ctx context.Context, q models.TenantQuery) ([]models.Tenant, error)
	GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error)
	ListTenantCampaigns(ctx context.Context, tenantID string) ([]models.Campaign, error)
}

type PaymentHandler struct {
	Session *tracker.Session
	Client  Backend
	// Payments is optional; without it GET /payments answers 501.
	Payments refstore.Searcher
	Logger   *slog.Logger
}

func NewPaymentHandler(session *tracker.Session, client Backend, payments refstore.Searcher, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{Session: session, Client: client, Payments: payments, Logger: logger}
}

// Register mounts every route on r.
func (h *PaymentHandler) Register(r fiber.Router) {
	r.Get("/health", h.Health)

	r.Get("/campaigns", h.ListCampaigns)
	r.Get("/campaigns/:id", h.GetCampaign)
	r.Get("/tenants", h.ListTenants)
	r.Get("/tenants/:id", h.GetTenant)
	r.Get("/tenants/:id/campaigns", h.ListTenantCampaigns)

	r.Get("/campaigns/:id/tracking", h.GetTracking)
	r.Post("/campaigns/:id/donations", h.CreateDonation)
	r.Post("/campaigns/:id/tracking/check", h.CheckStatus)
	r.Post("/campaigns/:id/tracking/reset", h.ResetTracking)
	r.Delete("/campaigns/:id/tracking", h.ClearHistory)
	r.Post("/campaigns/:id/tracking/unload", h.UnloadTracking)

	r.Post("/campaigns/:id/checkout", h.Checkout)
	r.Post("/donations/:id/stripe-payment", h.StripePayment)
	r.Get("/thank-you", h.ThankYou)

	r.Get("/payments", h.ListPayments)
	r.Post("/webhooks/donations", h.HandleWebhook)
}

func (h *PaymentHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// backendError maps a failed backend call onto a response.
func (h *PaymentHandler) backendError(c *fiber.Ctx, notFound string, err error) error {
	switch {
	case apiclient.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound})
	case apiclient.IsNetwork(err):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "donation service unreachable"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": "donation service timed out"})
	}
	if detail := apiclient.Detail(err); detail != "" {
		status := fiber.StatusBadGateway
		if apiclient.IsValidation(err) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{"error": detail})
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
}
