package course

import (
	"github.com/aulavivo/lms-api/database"
	"github.com/aulavivo/lms-api/handlers"
	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// CourseHandler handles the course catalog endpoints. The ordered student
// read endpoints go through the raw SQL catalog store; everything else goes
// through the course service.
type CourseHandler struct {
	svc       *services.CourseService
	catalog   database.Storage
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(svc *services.CourseService, catalog database.Storage) *CourseHandler {
	return &CourseHandler{
		svc:       svc,
		catalog:   catalog,
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

// List returns the courses visible to the caller
func (h *CourseHandler) List(c *fiber.Ctx) error {
	courses, err := h.svc.List(currentUser(c))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, courses)
}

// Get returns one course with its module/lesson tree
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid course id")
	}

	course, err := h.svc.Get(currentUser(c), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, course)
}

// Create creates a draft course owned by the caller
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req services.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.svc.Create(currentUser(c), req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, course)
}

// Update applies a partial update to a course
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid course id")
	}

	var req services.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.svc.Update(currentUser(c), id, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, course)
}

// Delete removes a course
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid course id")
	}

	if err := h.svc.Delete(currentUser(c), id); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.NoContent(c)
}

// Publish transitions the course to publicado
func (h *CourseHandler) Publish(c *fiber.Ctx) error {
	return h.setEstado(c, model.EstadoPublicado)
}

// Draft transitions the course back to borrador
func (h *CourseHandler) Draft(c *fiber.Ctx) error {
	return h.setEstado(c, model.EstadoBorrador)
}

func (h *CourseHandler) setEstado(c *fiber.Ctx, estado string) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid course id")
	}

	course, err := h.svc.SetEstado(currentUser(c), id, estado)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, course)
}

// StudentModules returns a course's modules in orden order through the raw
// catalog store
func (h *CourseHandler) StudentModules(c *fiber.Ctx) error {
	courseID := c.QueryInt("course_id")
	if courseID < 1 {
		return response.BadRequest(c, "course_id is required")
	}

	if err := h.svc.EnsureVisible(currentUser(c), uint(courseID)); err != nil {
		return handlers.ServiceError(c, err)
	}

	modules, err := h.catalog.ListCourseModules(uint(courseID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list modules")
	}
	return response.Success(c, modules)
}

// StudentLessons returns a course's lessons ordered by (module.orden,
// lesson.orden), optionally filtered to one module
func (h *CourseHandler) StudentLessons(c *fiber.Ctx) error {
	courseID := c.QueryInt("course_id")
	if courseID < 1 {
		return response.BadRequest(c, "course_id is required")
	}

	if err := h.svc.EnsureVisible(currentUser(c), uint(courseID)); err != nil {
		return handlers.ServiceError(c, err)
	}

	var moduleID *uint
	if m := c.QueryInt("module_id"); m > 0 {
		mid := uint(m)
		moduleID = &mid
	}

	lessons, err := h.catalog.ListCourseLessons(uint(courseID), moduleID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list lessons")
	}
	return response.Success(c, lessons)
}
