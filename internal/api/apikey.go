package api

import (
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/apikey"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/gofiber/fiber/v2"
)

type APIKeyHandler struct {
	apiKeys *apikey.Service
}

func NewAPIKeyHandler(apiKeyService *apikey.Service) *APIKeyHandler {
	return &APIKeyHandler{apiKeys: apiKeyService}
}

// CreateAPIKey mints an integration key. The plaintext key appears in this
// response only; afterwards only the hash exists.
func (h *APIKeyHandler) CreateAPIKey(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	var req models.APIKeyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	response, err := h.apiKeys.CreateAPIKey(c.Context(), sellerID, &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create api key",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *APIKeyHandler) ListAPIKeys(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	keys, err := h.apiKeys.ListAPIKeys(c.Context(), sellerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list api keys",
		})
	}
	return c.JSON(fiber.Map{"items": keys, "total": len(keys)})
}

func (h *APIKeyHandler) RevokeAPIKey(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}
	keyID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.apiKeys.RevokeAPIKey(c.Context(), sellerID, keyID); err != nil {
		if err == apikey.ErrKeyNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to revoke api key",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
