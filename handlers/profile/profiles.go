// Package profile serves the student and instructor profile resources.
// Reads are open to any authenticated user; writes are self-or-staff.
package profile

import (
	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProfileHandler handles profile reads and updates
type ProfileHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// UpdateStudentProfileRequest represents a student profile update
type UpdateStudentProfileRequest struct {
	Nombre   *string `json:"nombre" validate:"omitempty,max=100"`
	Apellido *string `json:"apellido" validate:"omitempty,max=100"`
}

// UpdateInstructorProfileRequest represents an instructor profile update
type UpdateInstructorProfileRequest struct {
	Bio           *string `json:"bio"`
	Especialidad  *string `json:"especialidad" validate:"omitempty,max=100"`
	RedesSociales *string `json:"redes_sociales" validate:"omitempty,max=255"`
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

func canEditProfile(c *fiber.Ctx, ownerID uint) bool {
	user, ok := middleware.GetUser(c)
	if !ok {
		return false
	}
	return user.IsStaff || user.ID == ownerID
}

// GetStudentProfile returns one student profile
func (h *ProfileHandler) GetStudentProfile(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid profile id")
	}

	var profile model.StudentProfile
	if err := h.db.First(&profile, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Profile not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}
	return response.Success(c, profile)
}

// UpdateStudentProfile updates the caller's own student profile (staff may
// update any)
func (h *ProfileHandler) UpdateStudentProfile(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid profile id")
	}

	var profile model.StudentProfile
	if err := h.db.First(&profile, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Profile not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	if !canEditProfile(c, profile.UserID) {
		return response.Forbidden(c, "Only the profile owner may modify it")
	}

	var req UpdateStudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Nombre != nil {
		profile.Nombre = validation.SanitizeString(*req.Nombre)
	}
	if req.Apellido != nil {
		profile.Apellido = validation.SanitizeString(*req.Apellido)
	}

	if err := h.db.Save(&profile).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}
	return response.Success(c, profile)
}

// GetInstructorProfile returns one instructor profile
func (h *ProfileHandler) GetInstructorProfile(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid profile id")
	}

	var profile model.InstructorProfile
	if err := h.db.First(&profile, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Profile not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}
	return response.Success(c, profile)
}

// UpdateInstructorProfile updates the caller's own instructor profile
// (staff may update any)
func (h *ProfileHandler) UpdateInstructorProfile(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid profile id")
	}

	var profile model.InstructorProfile
	if err := h.db.First(&profile, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Profile not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	if !canEditProfile(c, profile.UserID) {
		return response.Forbidden(c, "Only the profile owner may modify it")
	}

	var req UpdateInstructorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Especialidad != nil {
		profile.Especialidad = validation.SanitizeString(*req.Especialidad)
	}
	if req.RedesSociales != nil {
		profile.RedesSociales = validation.SanitizeString(*req.RedesSociales)
	}

	if err := h.db.Save(&profile).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}
	return response.Success(c, profile)
}
