// handlers/task_routes.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"studysync-engine/middleware"
	"studysync-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, taskService *services.TaskService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/tasks", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		tasks := taskService.List(userID)
		response := fiber.Map{"tasks": tasks}
		if focused, ok := taskService.FocusedTask(userID); ok {
			response["focused_task_id"] = focused
		}
		return c.JSON(response)
	})

	secured.Post("/tasks", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Text     string     `json:"text"`
			Priority string     `json:"priority"`
			Deadline *time.Time `json:"deadline"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		task, err := taskService.Add(userID, req.Text, req.Priority, req.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to add task",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(task)
	})

	secured.Post("/tasks/:id/toggle", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		taskID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid task id"})
		}

		task, stats, err := taskService.Toggle(userID, taskID)
		if errors.Is(err, services.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to toggle task",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"task": task, "stats": stats})
	})

	secured.Delete("/tasks/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		taskID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid task id"})
		}

		if err := taskService.Remove(userID, taskID); err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete task",
				"cause": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Put("/tasks/focus", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			TaskID *int64 `json:"task_id"` // null clears the pointer
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := taskService.SetFocus(userID, req.TaskID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to set focus",
				"cause": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
