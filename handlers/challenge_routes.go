// handlers/challenge_routes.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"studysync-engine/middleware"
	"studysync-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/challenges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		now := time.Now()

		type ChallengeView struct {
			ID            int64  `json:"id"`
			Title         string `json:"title"`
			Duration      int    `json:"duration"`
			StartDate     string `json:"startDate"`
			CompletedDays int    `json:"completedDays"`
			LastCheckIn   string `json:"lastCheckIn"`
			Status        string `json:"status"`
			Progress      int    `json:"progress"`
			CanCheckIn    bool   `json:"canCheckIn"`
			Complete      bool   `json:"complete"`
			History       any    `json:"history"`
		}

		challenges := challengeService.List(userID)
		views := make([]ChallengeView, 0, len(challenges))
		for _, ch := range challenges {
			views = append(views, ChallengeView{
				ID:            ch.ID,
				Title:         ch.Title,
				Duration:      ch.Duration,
				StartDate:     ch.StartDate,
				CompletedDays: ch.CompletedDays,
				LastCheckIn:   ch.LastCheckIn,
				Status:        ch.Status,
				Progress:      services.ChallengeProgress(ch, now),
				CanCheckIn:    services.CanCheckIn(ch, now),
				Complete:      services.ChallengeComplete(ch, now),
				History:       ch.History,
			})
		}
		return c.JSON(views)
	})

	secured.Post("/challenges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Title     string `json:"title"`
			Duration  int    `json:"duration"`
			StartDate string `json:"startDate"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		challenge, err := challengeService.Create(userID, req.Title, req.Duration, req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to create challenge",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(challenge)
	})

	secured.Post("/challenges/:id/checkin", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		challengeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge id"})
		}

		type Req struct {
			Success bool `json:"success"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		challenge, err := challengeService.CheckIn(userID, challengeID, req.Success)
		if errors.Is(err, services.ErrChallengeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "challenge not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "check-in failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(challenge)
	})

	secured.Delete("/challenges/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		challengeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge id"})
		}

		if err := challengeService.Delete(userID, challengeID); err != nil {
			if errors.Is(err, services.ErrChallengeNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "challenge not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete challenge",
				"cause": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
