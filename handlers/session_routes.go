// handlers/session_routes.go
package handlers

import (
	"studysync-engine/middleware"
	"studysync-engine/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupSessionRoutes(app *fiber.App, sessionService *services.SessionService) {
	sessions := app.Group("/session")

	sessions.Post("/guest", func(c *fiber.Ctx) error {
		type Req struct {
			DisplayName string `json:"displayName"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		boot, err := sessionService.LoginLocal(req.DisplayName)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to start guest session",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(boot)
	})

	sessions.Post("/signup", func(c *fiber.Ctx) error {
		type Req struct {
			Email       string `json:"email"`
			Password    string `json:"password"`
			DisplayName string `json:"displayName"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Email == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email and password required"})
		}

		boot, token, err := sessionService.SignUp(req.Email, req.Password, req.DisplayName)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "signup failed",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"identity":    boot.Identity,
			"stats":       boot.Stats,
			"accessToken": token,
		})
	})

	sessions.Post("/signin", func(c *fiber.Ctx) error {
		type Req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		boot, token, err := sessionService.SignIn(req.Email, req.Password)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "signin failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"identity":    boot.Identity,
			"stats":       boot.Stats,
			"accessToken": token,
		})
	})

	sessions.Post("/resume", func(c *fiber.Ctx) error {
		type Req struct {
			AccessToken string `json:"accessToken"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.AccessToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "accessToken required"})
		}

		boot, err := sessionService.Resume(req.AccessToken)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "session expired",
				"cause": err.Error(),
			})
		}
		return c.JSON(boot)
	})

	secured := app.Group("/session", middleware.UserContextMiddleware())

	secured.Get("/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		identity, err := sessionService.Get(userID)
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "identity not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load identity",
				"cause": err.Error(),
			})
		}
		return c.JSON(identity)
	})

	secured.Post("/logout", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			AccessToken string `json:"accessToken"`
		}
		var req Req
		_ = c.BodyParser(&req) // token is optional for local sessions

		if err := sessionService.Logout(userID, req.AccessToken); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "logout failed",
				"cause": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
