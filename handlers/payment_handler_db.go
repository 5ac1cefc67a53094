package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/brayohmurithidev/donatehub-landing/refstore"
)

// ListPayments pages through the stored donation references and the last
// status seen for each.
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	if h.Payments == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "payment history is not stored"})
	}

	f := refstore.Filter{Status: c.Query("status"), Limit: refstore.DefaultLimit}
	if v := c.Query("tracking"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tracking must be true or false"})
		}
		f.Tracking = &b
	}
	if v := c.Query("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			f.Limit = l
		}
	}
	if v := c.Query("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			f.Offset = o
		}
	}

	rows, total, err := h.Payments.Search(c.UserContext(), f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments: " + err.Error()})
	}
	return c.JSON(fiber.Map{
		"payments": rows,
		"pagination": fiber.Map{
			"total":  total,
			"limit":  f.Limit,
			"offset": f.Offset,
		},
	})
}
