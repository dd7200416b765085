package api

import (
	"errors"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/cities"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/deliveryslips"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/parcels"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/stock"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/tracking"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/users"
	"github.com/gofiber/fiber/v2"
)

// serviceError maps sentinel service errors onto HTTP responses so handlers
// stay thin. Unknown errors become opaque 500s.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, cities.ErrCityNotFound),
		errors.Is(err, parcels.ErrParcelNotFound),
		errors.Is(err, deliveryslips.ErrSlipNotFound),
		errors.Is(err, deliveryslips.ErrParcelNotFound),
		errors.Is(err, stock.ErrProductNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, users.ErrInvalidTransition),
		errors.Is(err, users.ErrNotReviewable),
		errors.Is(err, parcels.ErrInvalidTransition),
		errors.Is(err, parcels.ErrParcelLocked),
		errors.Is(err, deliveryslips.ErrInvalidTransition),
		errors.Is(err, deliveryslips.ErrSlipNotOpen),
		errors.Is(err, deliveryslips.ErrParcelAssigned),
		errors.Is(err, deliveryslips.ErrParcelNotScannable),
		errors.Is(err, stock.ErrInsufficientStock),
		errors.Is(err, stock.ErrNothingReserved):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, users.ErrInvalidStatus),
		errors.Is(err, users.ErrDuplicateEmail),
		errors.Is(err, cities.ErrDuplicateCity),
		errors.Is(err, cities.ErrCityInactive),
		errors.Is(err, cities.ErrNoPickup),
		errors.Is(err, parcels.ErrInvalidStatus),
		errors.Is(err, stock.ErrDuplicateSKU),
		errors.Is(err, stock.ErrNegativeQuantity):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, parcels.ErrNotOwner):
		status = fiber.StatusForbidden
		message = err.Error()
	case errors.Is(err, tracking.ErrInvalidToken),
		errors.Is(err, tracking.ErrTokenExpired):
		status = fiber.StatusUnauthorized
		message = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
