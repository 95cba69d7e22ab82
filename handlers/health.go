package handlers

import (
	"github.com/aulavivo/lms-api/database"
	"github.com/aulavivo/lms-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports service liveness and database reachability
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Database unreachable", "UNHEALTHY")
	}
	return response.Success(c, fiber.Map{"status": "ok"})
}
