// handlers/settings_routes.go
package handlers

import (
	"errors"

	"studysync-engine/middleware"
	"studysync-engine/models"
	"studysync-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSettingsRoutes(app *fiber.App, preferencesService *services.PreferencesService, exportService *services.ExportService) {
	secured := app.Group("/settings", middleware.UserContextMiddleware())

	secured.Get("/preferences", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		return c.JSON(preferencesService.Get(userID))
	})

	secured.Put("/preferences", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var prefs models.Preferences
		if err := c.BodyParser(&prefs); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := preferencesService.Update(userID, prefs); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save preferences",
				"cause": err.Error(),
			})
		}
		return c.JSON(prefs)
	})

	secured.Post("/reset", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Confirm bool `json:"confirm"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := preferencesService.ResetAll(userID, req.Confirm); err != nil {
			if errors.Is(err, services.ErrResetNotConfirmed) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to reset data",
				"cause": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Post("/export", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		url, err := exportService.Export(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "export failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"url": url})
	})
}
