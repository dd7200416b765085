package api

import (
	"fmt"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/deliveryslips"
	"github.com/gofiber/fiber/v2"
)

type DeliverySlipHandler struct {
	slips *deliveryslips.Service
}

func NewDeliverySlipHandler(slipService *deliveryslips.Service) *DeliverySlipHandler {
	return &DeliverySlipHandler{slips: slipService}
}

func (h *DeliverySlipHandler) CreateSlip(c *fiber.Ctx) error {
	createdBy, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no user identity"})
	}

	var req models.SlipCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	slip, err := h.slips.CreateSlip(c.Context(), createdBy, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(slip)
}

func (h *DeliverySlipHandler) GetSlip(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	slip, err := h.slips.GetSlip(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(slip)
}

func (h *DeliverySlipHandler) ListSlips(c *fiber.Ctx) error {
	var filter models.SlipFilter
	if err := c.QueryParser(&filter); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid query parameters"})
	}

	page, err := h.slips.ListSlips(c.Context(), &filter)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(page)
}

// ScanParcel is the barcode-scanner endpoint: one parcel code in, the
// attached parcel out.
func (h *DeliverySlipHandler) ScanParcel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.SlipScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ParcelCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "parcel_code is required"})
	}

	parcel, err := h.slips.ScanParcel(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(parcel)
}

func (h *DeliverySlipHandler) RemoveParcel(c *fiber.Ctx) error {
	slipID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	parcelID, err := parseIDParam(c, "parcelId")
	if err != nil {
		return err
	}

	if err := h.slips.RemoveParcel(c.Context(), slipID, parcelID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *DeliverySlipHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.SlipStatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	slip, err := h.slips.ChangeStatus(c.Context(), id, actorID(c), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(slip)
}

// ExportCSV streams the slip manifest as a CSV download.
func (h *DeliverySlipHandler) ExportCSV(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	data, err := h.slips.ExportCSV(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="slip-%d.csv"`, id))
	return c.Send(data)
}
