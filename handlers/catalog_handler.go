package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/brayohmurithidev/donatehub-landing/models"
)

func (h *PaymentHandler) ListCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.Client.ListCampaigns(c.UserContext())
	if err != nil {
		return h.backendError(c, "campaigns not found", err)
	}
	return c.JSON(campaigns)
}

func (h *PaymentHandler) GetCampaign(c *fiber.Ctx) error {
	campaign, err := h.Client.GetCampaign(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.backendError(c, "campaign not found", err)
	}
	return c.JSON(fiber.Map{
		"campaign": campaign,
		"progress": campaign.Progress(),
	})
}

func (h *PaymentHandler) ListTenants(c *fiber.Ctx) error {
	q := models.TenantQuery{Search: c.Query("search")}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	if v := c.Query("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.PageSize = n
		}
	}
	tenants, err := h.Client.ListTenants(c.UserContext(), q)
	if err != nil {
		return h.backendError(c, "tenants not found", err)
	}
	return c.JSON(tenants)
}

func (h *PaymentHandler) GetTenant(c *fiber.Ctx) error {
	tenant, err := h.Client.GetTenant(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.backendError(c, "tenant not found", err)
	}
	return c.JSON(tenant)
}

func (h *PaymentHandler) ListTenantCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.Client.ListTenantCampaigns(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.backendError(c, "tenant not found", err)
	}
	return c.JSON(campaigns)
}
