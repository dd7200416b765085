package api

import (
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/parcels"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/tracking"
	"github.com/gofiber/fiber/v2"
)

type TrackingHandler struct {
	tracking *tracking.Service
	parcels  *parcels.Service
}

func NewTrackingHandler(trackingService *tracking.Service, parcelService *parcels.Service) *TrackingHandler {
	return &TrackingHandler{tracking: trackingService, parcels: parcelService}
}

// IssueToken mints a shareable tracking link token for a parcel. Requires an
// authenticated caller; the resulting token itself is public.
func (h *TrackingHandler) IssueToken(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	parcel, err := h.parcels.GetParcel(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	token, err := h.tracking.IssueToken(parcel.Code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to issue tracking token",
		})
	}

	return c.JSON(fiber.Map{
		"parcel_code": parcel.Code,
		"token":       token,
	})
}

// Track is the public endpoint behind tracking links. No session required;
// the token is the credential.
func (h *TrackingHandler) Track(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing tracking token"})
	}

	status, err := h.tracking.Track(c.Context(), token)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(status)
}
