package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const clientIDKey = "auth_client_id"

// ClientMiddleware assigns every browser a stable client id cookie.
// The client id keys the session store and the application shell.
func ClientMiddleware(cookieName string, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := c.Cookies(cookieName)
		if _, err := uuid.Parse(clientID); err != nil {
			clientID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    clientID,
				Path:     "/",
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
				Expires:  time.Now().Add(365 * 24 * time.Hour),
			})
		}
		c.Locals(clientIDKey, clientID)
		return c.Next()
	}
}

// ClientIDFromContext returns the client id set by ClientMiddleware.
func ClientIDFromContext(c *fiber.Ctx) (string, bool) {
	clientID, ok := c.Locals(clientIDKey).(string)
	return clientID, ok && clientID != ""
}
