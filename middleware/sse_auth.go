// middleware/sse_auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"studysync-engine/services"
)

// SSEAuthMiddleware validates `token` from a query param via the auth
// service. EventSource cannot set headers, so the level-up stream
// authenticates this way instead of through the gateway context.
//
// Usage:
//
//	app.Get("/user/levelups/stream", middleware.SSEAuthMiddleware(authClient), progressionService.StreamLevelUpsSSE)
func SSEAuthMiddleware(authClient *services.AuthServiceClient) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(string(c.Request().URI().QueryArgs().Peek("token")))
		if accessToken == "" {
			log.Printf("[SSEAuth] ❌ Missing token query param for %s", c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token in query",
			})
		}

		user, err := authClient.GetSession(accessToken)
		if err != nil {
			log.Printf("[SSEAuth] ❌ Validation failed for token (prefix: %.10s...): %v", accessToken, err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals("user_id", user.ID)
		return c.Next()
	}
}
