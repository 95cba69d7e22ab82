package feedback

import (
	"github.com/aulavivo/lms-api/handlers"
	"github.com/aulavivo/lms-api/utils/middleware"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// RateCourseRequest represents the request to rate a course
type RateCourseRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
	Rating   int  `json:"rating" validate:"required,min=1,max=5"`
}

// ListRatings returns a course's ratings (course_id query)
func (h *FeedbackHandler) ListRatings(c *fiber.Ctx) error {
	courseID := c.QueryInt("course_id")
	if courseID < 1 {
		return response.BadRequest(c, "course_id is required")
	}

	ratings, err := h.svc.ListRatings(currentUser(c), uint(courseID))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, ratings)
}

// Rate records or replaces the caller's rating of a course
func (h *FeedbackHandler) Rate(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req RateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	rating, err := h.svc.Rate(c.Context(), user, req.CourseID, req.Rating)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, rating)
}

// Summary returns a course's average rating and count (course_id query)
func (h *FeedbackHandler) Summary(c *fiber.Ctx) error {
	courseID := c.QueryInt("course_id")
	if courseID < 1 {
		return response.BadRequest(c, "course_id is required")
	}

	summary, err := h.svc.Summary(c.Context(), currentUser(c), uint(courseID))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, summary)
}

// NotAllowed rejects direct creation of rating rows
func NotAllowed(c *fiber.Ctx) error {
	return response.MethodNotAllowed(c, "Use the rate action")
}
