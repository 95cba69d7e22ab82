package lesson

import (
	"github.com/aulavivo/lms-api/handlers"
	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// LessonHandler handles module and lesson endpoints
type LessonHandler struct {
	svc       *services.LessonService
	validator *validation.Validator
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(svc *services.LessonService) *LessonHandler {
	return &LessonHandler{
		svc:       svc,
		validator: validation.NewValidator(),
	}
}

func currentUser(c *fiber.Ctx) *model.User {
	user, ok := middleware.GetUser(c)
	if !ok {
		return nil
	}
	return user
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

// ListModules returns the modules of a course (course_id query)
func (h *LessonHandler) ListModules(c *fiber.Ctx) error {
	courseID := c.QueryInt("course_id")
	if courseID < 1 {
		return response.BadRequest(c, "course_id is required")
	}

	modules, err := h.svc.ListModules(currentUser(c), uint(courseID))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, modules)
}

// GetModule returns one module with its lessons
func (h *LessonHandler) GetModule(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid module id")
	}

	mod, err := h.svc.GetModule(currentUser(c), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, mod)
}

// CreateModule adds a module to a course
func (h *LessonHandler) CreateModule(c *fiber.Ctx) error {
	var req services.CreateModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	mod, err := h.svc.CreateModule(currentUser(c), req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, mod)
}

// UpdateModule applies a partial update to a module
func (h *LessonHandler) UpdateModule(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid module id")
	}

	var req services.UpdateModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	mod, err := h.svc.UpdateModule(currentUser(c), id, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, mod)
}

// DeleteModule removes a module
func (h *LessonHandler) DeleteModule(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid module id")
	}

	if err := h.svc.DeleteModule(currentUser(c), id); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.NoContent(c)
}
