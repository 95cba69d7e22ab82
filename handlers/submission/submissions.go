// Package submission serves quiz attempts. Submissions are append-only;
// only the submit action writes and nothing mutates existing rows.
package submission

import (
	"github.com/aulavivo/lms-api/handlers"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/aulavivo/lms-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// SubmissionHandler handles submission endpoints
type SubmissionHandler struct {
	svc       *services.SubmissionService
	validator *validation.Validator
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(svc *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		svc:       svc,
		validator: validation.NewValidator(),
	}
}

// SubmitRequest represents a quiz attempt. Answers map question ids to
// selected choice ids and are stored verbatim.
type SubmitRequest struct {
	QuizID  uint                   `json:"quiz_id" validate:"required"`
	Answers map[string]interface{} `json:"answers"`
}

// List returns submissions scoped to the caller
func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	submissions, err := h.svc.List(user)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, submissions)
}

// Get returns one submission
func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid submission id")
	}

	submission, svcErr := h.svc.Get(user, uint(id))
	if svcErr != nil {
		return handlers.ServiceError(c, svcErr)
	}
	return response.Success(c, submission)
}

// Submit grades and stores a new attempt
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	submission, err := h.svc.Submit(user, req.QuizID, req.Answers)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, submission)
}

// NotAllowed rejects direct mutation of submissions
func NotAllowed(c *fiber.Ctx) error {
	return response.MethodNotAllowed(c, "Submissions are immutable, use the submit action")
}
