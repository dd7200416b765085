package api

import (
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/stock"
	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	stock *stock.Service
}

func NewStockHandler(stockService *stock.Service) *StockHandler {
	return &StockHandler{stock: stockService}
}

func (h *StockHandler) CreateProduct(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}

	var req models.ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.SKU == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sku and name are required"})
	}

	product, err := h.stock.CreateProduct(c.Context(), sellerID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *StockHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.stock.GetProduct(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(product)
}

func (h *StockHandler) ListProducts(c *fiber.Ctx) error {
	sellerID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no seller identity"})
	}
	activeOnly := c.QueryBool("active_only", false)

	products, err := h.stock.ListProducts(c.Context(), sellerID, activeOnly)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"items": products, "total": len(products)})
}

func (h *StockHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.ProductUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	product, err := h.stock.UpdateProduct(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(product)
}

type stockQuantityRequest struct {
	Quantity int    `json:"quantity"`
	ParcelID *uint  `json:"parcel_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func (h *StockHandler) Receive(c *fiber.Ctx) error {
	return h.mutation(c, func(id uint, actorID uint, req *stockQuantityRequest) (*models.Product, error) {
		return h.stock.Receive(c.Context(), id, req.Quantity, actorID, req.Reason)
	})
}

func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	return h.mutation(c, func(id uint, actorID uint, req *stockQuantityRequest) (*models.Product, error) {
		return h.stock.Reserve(c.Context(), id, req.Quantity, req.ParcelID, actorID)
	})
}

func (h *StockHandler) Release(c *fiber.Ctx) error {
	return h.mutation(c, func(id uint, actorID uint, req *stockQuantityRequest) (*models.Product, error) {
		return h.stock.Release(c.Context(), id, req.Quantity, req.ParcelID, actorID)
	})
}

func (h *StockHandler) Commit(c *fiber.Ctx) error {
	return h.mutation(c, func(id uint, actorID uint, req *stockQuantityRequest) (*models.Product, error) {
		return h.stock.Commit(c.Context(), id, req.Quantity, req.ParcelID, actorID)
	})
}

func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	actorID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no user identity"})
	}

	var req models.StockAdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	product, err := h.stock.Adjust(c.Context(), id, actorID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(product)
}

func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 100)

	movements, err := h.stock.ListMovements(c.Context(), id, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"items": movements, "total": len(movements)})
}

func (h *StockHandler) mutation(c *fiber.Ctx, fn func(id uint, actorID uint, req *stockQuantityRequest) (*models.Product, error)) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	actorID, ok := auth.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no user identity"})
	}

	var req stockQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	product, err := fn(id, actorID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(product)
}
