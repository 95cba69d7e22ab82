package feedback

import (
	"github.com/aulavivo/lms-api/handlers"
	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// FeedbackHandler handles comment and rating endpoints
type FeedbackHandler struct {
	svc       *services.FeedbackService
	validator *validation.Validator
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(svc *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
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

func queryUint(c *fiber.Ctx, name string) *uint {
	if v := c.QueryInt(name); v > 0 {
		u := uint(v)
		return &u
	}
	return nil
}

// ListComments returns comments filtered by course_id or lesson_id
func (h *FeedbackHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.svc.ListComments(currentUser(c), queryUint(c, "course_id"), queryUint(c, "lesson_id"))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, comments)
}

// CreateComment attaches a comment to a course or a lesson
func (h *FeedbackHandler) CreateComment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req services.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	comment, err := h.svc.CreateComment(user, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, comment)
}

// UpdateComment replaces the text of a comment (owner or staff)
func (h *FeedbackHandler) UpdateComment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid comment id")
	}

	var req services.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	comment, svcErr := h.svc.UpdateComment(user, uint(id), req)
	if svcErr != nil {
		return handlers.ServiceError(c, svcErr)
	}
	return response.Success(c, comment)
}

// DeleteComment removes a comment (owner or staff)
func (h *FeedbackHandler) DeleteComment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid comment id")
	}

	if err := h.svc.DeleteComment(user, uint(id)); err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.NoContent(c)
}
