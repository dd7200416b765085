package api

import (
	"errors"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/sms"
	"github.com/gofiber/fiber/v2"
)

type SmsHandler struct {
	sms *sms.Service
}

func NewSmsHandler(smsService *sms.Service) *SmsHandler {
	return &SmsHandler{sms: smsService}
}

func (h *SmsHandler) GetSettings(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	settings, err := h.sms.GetSettings(c.Context(), sellerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(settings)
}

func (h *SmsHandler) UpdateSettings(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	var req models.SmsSettingsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	settings, err := h.sms.UpdateSettings(c.Context(), sellerID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(settings)
}

func (h *SmsHandler) UpsertTemplate(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	var req models.SmsTemplateUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Status == "" || req.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status and body are required"})
	}

	template, err := h.sms.UpsertTemplate(c.Context(), sellerID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(template)
}

func (h *SmsHandler) DeleteTemplate(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}
	status := models.ParcelStatus(c.Params("status"))

	if err := h.sms.DeleteTemplate(c.Context(), sellerID, status); err != nil {
		if errors.Is(err, sms.ErrTemplateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SmsHandler) ListMessages(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}
	limit := c.QueryInt("limit", 50)

	messages, err := h.sms.ListMessages(c.Context(), sellerID, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"items": messages, "total": len(messages)})
}
