// Package user holds the staff-only user administration endpoints.
package user

import (
	"errors"

	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserHandler handles admin user management
type UserHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// SetRoleRequest represents a role change request
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student instructor admin"`
}

// SetEnabledRequest toggles one capability flag
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// AdminFlagsRequest sets the staff flag
type AdminFlagsRequest struct {
	IsStaff *bool `json:"is_staff" validate:"required"`
}

var errInvalidUserID = errors.New("invalid user id")

// loadUser resolves the :id path parameter to a user row. It never writes
// to the response; callers map the returned error with loadUserError.
func (h *UserHandler) loadUser(c *fiber.Ctx) (*model.User, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, errInvalidUserID
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func loadUserError(c *fiber.Ctx, err error) error {
	switch err {
	case errInvalidUserID:
		return response.BadRequest(c, "Invalid user id")
	case gorm.ErrRecordNotFound:
		return response.NotFound(c, "User not found")
	default:
		return response.InternalServerError(c, "Failed to load user")
	}
}

// List returns all users
func (h *UserHandler) List(c *fiber.Ctx) error {
	var users []model.User
	if err := h.db.Order("id").Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}
	return response.Success(c, users)
}

// SetRole changes a user's role and applies the capability flags the new
// role implies. Flags already granted are never revoked here; admins toggle
// those explicitly.
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return loadUserError(c, err)
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	user.Role = req.Role
	user.ApplyRole()

	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}
	return response.Success(c, user)
}

// EnableStudent toggles the student capability flag
func (h *UserHandler) EnableStudent(c *fiber.Ctx) error {
	return h.setFlag(c, func(user *model.User, enabled bool) {
		user.StudentEnabled = enabled
	})
}

// EnableInstructor toggles the instructor capability flag
func (h *UserHandler) EnableInstructor(c *fiber.Ctx) error {
	return h.setFlag(c, func(user *model.User, enabled bool) {
		user.InstructorEnabled = enabled
	})
}

func (h *UserHandler) setFlag(c *fiber.Ctx, apply func(*model.User, bool)) error {
	user, err := h.loadUser(c)
	if err != nil {
		return loadUserError(c, err)
	}

	var req SetEnabledRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	apply(user, *req.Enabled)
	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}
	return response.Success(c, user)
}

// AdminFlags sets the staff flag
func (h *UserHandler) AdminFlags(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return loadUserError(c, err)
	}

	var req AdminFlagsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	user.IsStaff = *req.IsStaff
	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}
	return response.Success(c, user)
}

// Delete removes a user and, through FK cascades, their profiles,
// enrollments, submissions, comments and ratings
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return loadUserError(c, err)
	}

	if err := h.db.Delete(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}
	return response.NoContent(c)
}
