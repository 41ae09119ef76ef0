// handlers/timer_routes.go
package handlers

import (
	"studysync-engine/middleware"
	"studysync-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTimerRoutes(app *fiber.App, timerService *services.TimerService) {
	secured := app.Group("/timer", middleware.UserContextMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		return c.JSON(timerService.State(userID))
	})

	secured.Post("/toggle", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		return c.JSON(timerService.Toggle(userID))
	})

	secured.Post("/reset", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		return c.JSON(timerService.Reset(userID))
	})

	secured.Put("/mode", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Mode string `json:"mode"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		return c.JSON(timerService.SetMode(userID, req.Mode))
	})
}
