package api

import (
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/cities"
	"github.com/gofiber/fiber/v2"
)

type CityHandler struct {
	cities *cities.Service
}

func NewCityHandler(cityService *cities.Service) *CityHandler {
	return &CityHandler{cities: cityService}
}

func (h *CityHandler) CreateCity(c *fiber.Ctx) error {
	var req models.CityCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and code are required"})
	}
	if req.DeliveryFee < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "delivery_fee must not be negative"})
	}

	city, err := h.cities.CreateCity(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(city)
}

func (h *CityHandler) GetCity(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	city, err := h.cities.GetCity(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(city)
}

func (h *CityHandler) ListCities(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active_only", false)

	list, err := h.cities.ListCities(c.Context(), activeOnly)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"items": list, "total": len(list)})
}

func (h *CityHandler) UpdateCity(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CityUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	city, err := h.cities.UpdateCity(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(city)
}

// Quote prices one parcel to a destination city before creation.
func (h *CityHandler) Quote(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	withPickup := c.QueryBool("pickup", false)

	quote, err := h.cities.Quote(c.Context(), id, withPickup)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(quote)
}
