// handlers/progression_routes.go
package handlers

import (
	"strconv"

	"studysync-engine/middleware"
	"studysync-engine/services"
	"studysync-engine/workers"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, progressionService *services.ProgressionService, streakService *services.StreakService, syncCoordinator *workers.SyncCoordinator, authClient *services.AuthServiceClient) {
	// 🔐 Secured routes — require user context from the Gateway
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		stats := progressionService.GetStats(userID)
		syncStatus := syncCoordinator.StatusFor(userID)

		return c.JSON(fiber.Map{
			"level":                 stats.Level,
			"xp":                    stats.XP,
			"max_xp":                stats.MaxXP,
			"streak":                stats.Streak,
			"last_active":           stats.LastActive,
			"total_tasks_completed": stats.TotalTasksCompleted,
			"sync":                  syncStatus,
		})
	})

	// Re-runs the once-per-session streak check; safe to call from
	// concurrent renders, only the first call per session mutates.
	securedGroup.Post("/user/streak/evaluate", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		stats, err := streakService.EnsureEvaluated(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "streak evaluation failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})

	// Level-up celebration stream. EventSource auth runs off a query
	// token instead of gateway headers.
	app.Get("/user/levelups/stream", middleware.SSEAuthMiddleware(authClient), progressionService.StreamLevelUpsSSE)

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required"`
			XP     int    `json:"xp" validate:"required"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.XP == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and a non-zero xp amount are required",
			})
		}

		stats, leveledUp, err := progressionService.AwardXP(req.UserID, req.XP, 0, "admin:"+req.Reason)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "XP award failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message":    "XP granted successfully",
			"user_id":    req.UserID,
			"xp":         req.XP,
			"leveled_up": leveledUp,
			"level":      stats.Level,
		})
	})

	adminGroup.Get("/levelups", func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		events, err := progressionService.RecentLevelUps(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch level-up events",
				"cause": err.Error(),
			})
		}
		return c.JSON(events)
	})
}
