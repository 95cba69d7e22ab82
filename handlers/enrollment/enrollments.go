// Package enrollment serves enrollments and lesson progress. Both are
// derived-state resources: rows only change through the enroll and complete
// actions, so the plain mutating verbs answer 405.
package enrollment

import (
	"github.com/aulavivo/lms-api/handlers"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// EnrollmentHandler handles enrollment and lesson progress endpoints
type EnrollmentHandler struct {
	svc       *services.EnrollmentService
	validator *validation.Validator
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(svc *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		svc:       svc,
		validator: validation.NewValidator(),
	}
}

// EnrollRequest represents the request to enroll in a course
type EnrollRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

// CompleteLessonRequest represents the request to complete a lesson
type CompleteLessonRequest struct {
	LessonID uint `json:"lesson_id" validate:"required"`
}

// List returns enrollments scoped to the caller
func (h *EnrollmentHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	enrollments, err := h.svc.List(user)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, enrollments)
}

// My returns the caller's own enrollments
func (h *EnrollmentHandler) My(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	enrollments, err := h.svc.ListMine(user)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, enrollments)
}

// Enroll enrolls the caller in a published course
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	enrollment, err := h.svc.Enroll(user, req.CourseID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, enrollment)
}

// ListProgress returns lesson progress rows scoped to the caller, optionally
// filtered by course_id
func (h *EnrollmentHandler) ListProgress(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var courseID *uint
	if id := c.QueryInt("course_id"); id > 0 {
		cid := uint(id)
		courseID = &cid
	}

	progress, err := h.svc.ListProgress(user, courseID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, progress)
}

// CompleteLesson marks a lesson completed and returns the updated enrollment
// with the recomputed percentage
func (h *EnrollmentHandler) CompleteLesson(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req CompleteLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	enrollment, progress, err := h.svc.CompleteLesson(user, req.LessonID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, fiber.Map{
		"enrollment": enrollment,
		"progress":   progress,
	})
}

// NotAllowed rejects direct mutation of derived-state rows
func NotAllowed(c *fiber.Ctx) error {
	return response.MethodNotAllowed(c, "Use the dedicated action endpoint")
}
