package api

import (
	"strconv"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/users"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users *users.Service
}

func NewUserHandler(userService *users.Service) *UserHandler {
	return &UserHandler{users: userService}
}

// Me returns the profile of the authenticated user together with the policy
// inputs the SPA uses to build its navigation.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.GetCurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "no user record for this session",
		})
	}
	return c.JSON(user.ToResponse())
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req models.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Email == "" || req.UserType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name, email and user_type are required",
		})
	}

	user, err := h.users.CreateUser(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user.ToResponse())
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	userType := access.UserType(c.Query("user_type"))
	status := access.AccountStatus(c.Query("status"))

	list, err := h.users.ListUsers(c.Context(), userType, status)
	if err != nil {
		return serviceError(c, err)
	}

	responses := make([]models.UserResponse, 0, len(list))
	for i := range list {
		responses = append(responses, list[i].ToResponse())
	}
	return c.JSON(fiber.Map{"items": responses, "total": len(responses)})
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.users.UpdateUser(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user.ToResponse())
}

// CompleteProfile is called from the profile completion page. It is the one
// mutation an INACTIVE account is allowed to perform.
func (h *UserHandler) CompleteProfile(c *fiber.Ctx) error {
	user, ok := auth.GetCurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "no user record for this session",
		})
	}

	var req models.CompleteProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Phone == "" || req.CityID == 0 || req.Address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "phone, city_id and address are required",
		})
	}

	updated, err := h.users.CompleteProfile(c.Context(), user.ID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(updated.ToResponse())
}

func (h *UserHandler) ChangeAccountStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.AccountStatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.users.ChangeAccountStatus(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user.ToResponse())
}

func (h *UserHandler) ReviewValidation(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.ValidationReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.users.ReviewValidation(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user.ToResponse())
}

func (h *UserHandler) UpdateGrants(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.GrantsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.users.UpdateGrants(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user.ToResponse())
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name+" parameter")
	}
	return uint(id), nil
}
