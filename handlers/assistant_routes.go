// handlers/assistant_routes.go
package handlers

import (
	"studysync-engine/middleware"
	"studysync-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAssistantRoutes(app *fiber.App, assistantService *services.AssistantService) {
	secured := app.Group("/assistant", middleware.UserContextMiddleware())

	secured.Post("/chat", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Message string `json:"message"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message required"})
		}

		return c.JSON(assistantService.Chat(userID, req.Message))
	})

	secured.Post("/schedule", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Availability string `json:"availability"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		schedule, err := assistantService.GenerateSchedule(userID, req.Availability)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to generate schedule",
				"cause": err.Error(),
			})
		}
		return c.JSON(schedule)
	})

	secured.Post("/resources", func(c *fiber.Ctx) error {
		type Req struct {
			Subject string `json:"subject"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Subject == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "subject required"})
		}

		resources, err := assistantService.SuggestResources(req.Subject)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to suggest resources",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"resources": resources})
	})
}
