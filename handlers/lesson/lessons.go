package lesson

import (
	"github.com/aulavivo/lms-api/handlers"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ListLessons returns the lessons of a module (module_id query)
func (h *LessonHandler) ListLessons(c *fiber.Ctx) error {
	moduleID := c.QueryInt("module_id")
	if moduleID < 1 {
		return response.BadRequest(c, "module_id is required")
	}

	lessons, err := h.svc.ListLessons(currentUser(c), uint(moduleID))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, lessons)
}

// GetLesson returns one lesson
func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid lesson id")
	}

	lesson, err := h.svc.GetLesson(currentUser(c), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, lesson)
}

// CreateLesson adds a lesson to a module
func (h *LessonHandler) CreateLesson(c *fiber.Ctx) error {
	var req services.CreateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	lesson, err := h.svc.CreateLesson(currentUser(c), req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, lesson)
}

// UpdateLesson applies a partial update to a lesson
func (h *LessonHandler) UpdateLesson(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid lesson id")
	}

	var req services.UpdateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	lesson, err := h.svc.UpdateLesson(currentUser(c), id, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, lesson)
}

// DeleteLesson removes a lesson
func (h *LessonHandler) DeleteLesson(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid lesson id")
	}

	if err := h.svc.DeleteLesson(currentUser(c), id); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.NoContent(c)
}

// UploadAttachment stores a PDF attachment for a file lesson (multipart
// field "file")
func (h *LessonHandler) UploadAttachment(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid lesson id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file upload is required")
	}

	lesson, url, err := h.svc.UploadAttachment(c.Context(), currentUser(c), id, file)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, fiber.Map{
		"lesson": lesson,
		"url":    url,
	})
}
