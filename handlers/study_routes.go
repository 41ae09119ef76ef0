// handlers/study_routes.go
package handlers

import (
	"errors"
	"strconv"

	"studysync-engine/middleware"
	"studysync-engine/services"

	"github.com/gofiber/fiber/v2"
)

// Subjects with their nested notes, plus the daily planner notes map.
func SetupStudyRoutes(app *fiber.App, subjectService *services.SubjectService, notesService *services.NotesService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/subjects", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		query := c.Query("q")
		return c.JSON(subjectService.List(userID, query))
	})

	secured.Post("/subjects", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		subject, err := subjectService.Create(userID, req.Name, req.Color)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to create subject",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(subject)
	})

	secured.Delete("/subjects/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		subjectID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid subject id"})
		}

		if err := subjectService.Delete(userID, subjectID); err != nil {
			if errors.Is(err, services.ErrSubjectNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subject not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete subject",
				"cause": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Put("/subjects/:id/notes", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		subjectID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid subject id"})
		}

		type Req struct {
			NoteID  int64  `json:"noteId"` // 0 creates a new note
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		note, err := subjectService.SaveNote(userID, subjectID, req.NoteID, req.Title, req.Content)
		if errors.Is(err, services.ErrSubjectNotFound) || errors.Is(err, services.ErrSubjectNoteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save note",
				"cause": err.Error(),
			})
		}
		return c.JSON(note)
	})

	secured.Delete("/subjects/:id/notes/:noteId", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		subjectID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid subject id"})
		}
		noteID, err := strconv.ParseInt(c.Params("noteId"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid note id"})
		}

		if err := subjectService.DeleteNote(userID, subjectID, noteID); err != nil {
			if errors.Is(err, services.ErrSubjectNotFound) || errors.Is(err, services.ErrSubjectNoteNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete note",
				"cause": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Get("/notes", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		return c.JSON(notesService.All(userID))
	})

	secured.Put("/notes/:date", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Content string `json:"content"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := notesService.Update(userID, c.Params("date"), req.Content); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to save note",
				"cause": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
