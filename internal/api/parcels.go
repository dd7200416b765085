package api

import (
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/events"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/parcels"
	"github.com/gofiber/fiber/v2"
)

type ParcelHandler struct {
	parcels *parcels.Service
	events  *events.Service
}

func NewParcelHandler(parcelService *parcels.Service, eventService *events.Service) *ParcelHandler {
	return &ParcelHandler{parcels: parcelService, events: eventService}
}

func (h *ParcelHandler) CreateParcel(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	var req models.ParcelCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.RecipientName == "" || req.RecipientPhone == "" || req.CityID == 0 || req.Address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "recipient_name, recipient_phone, city_id and address are required",
		})
	}

	parcel, err := h.parcels.CreateParcel(c.Context(), sellerID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(parcel)
}

func (h *ParcelHandler) GetParcel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	parcel, err := h.parcels.GetParcel(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(parcel)
}

// ListParcels serves the parcel table. Sellers are always scoped to their
// own parcels; staff see everything.
func (h *ParcelHandler) ListParcels(c *fiber.Ctx) error {
	var filter models.ParcelFilter
	if err := c.QueryParser(&filter); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid query parameters"})
	}

	if user, ok := auth.GetCurrentUser(c); ok && user.UserType == "SELLER" {
		filter.SellerID = &user.ID
	} else if authCtx := auth.GetAuthContext(c); authCtx != nil && authCtx.IsAPIKey() {
		filter.SellerID = &authCtx.APIKey.SellerID
	}

	page, err := h.parcels.ListParcels(c.Context(), &filter)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(page)
}

func (h *ParcelHandler) UpdateParcel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	var req models.ParcelUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	parcel, err := h.parcels.UpdateParcel(c.Context(), id, sellerID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(parcel)
}

func (h *ParcelHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.ParcelStatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	parcel, err := h.parcels.ChangeStatus(c.Context(), id, actorID(c), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(parcel)
}

func (h *ParcelHandler) BulkChangeStatus(c *fiber.Ctx) error {
	var req models.ParcelBulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.ParcelIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "parcel_ids is required"})
	}

	result, err := h.parcels.BulkChangeStatus(c.Context(), actorID(c), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}

// History returns the audit trail for one parcel from the event store.
func (h *ParcelHandler) History(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	history, err := h.events.ParcelHistory(c.Context(), id)
	if err != nil {
		if err == events.ErrEventStoreDisabled {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
				"error": "event history is not enabled",
			})
		}
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"items": history, "total": len(history)})
}

// Stats aggregates the current seller's recent status transitions for the
// dashboard. ?days bounds the window, defaulting to 30.
func (h *ParcelHandler) Stats(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	days := c.QueryInt("days", 30)
	counts, err := h.events.StatusCounts(c.Context(), sellerID, days)
	if err != nil {
		if err == events.ErrEventStoreDisabled {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
				"error": "event history is not enabled",
			})
		}
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"days": days, "counts": counts})
}

func actorID(c *fiber.Ctx) string {
	if clerkID, ok := auth.GetClerkUserID(c); ok {
		return clerkID
	}
	if authCtx := auth.GetAuthContext(c); authCtx != nil && authCtx.IsAPIKey() && authCtx.APIKey.Key != nil {
		return "apikey:" + authCtx.APIKey.Key.KeyPrefix
	}
	return "system"
}
