package handlers

import (
	"errors"

	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ServiceError maps a service-layer error onto the HTTP envelope. Unknown
// errors become 500s without leaking internals to the client.
func ServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrBadRequest):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "")
	}
}
