package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionLocal = "session_id"

// SessionMiddleware makes sure every request carries a session id, issuing a
// fresh cookie when the client has none or sends a malformed one.
func SessionMiddleware(deps *Dependencies) fiber.Handler {
	name := deps.cookieName()
	return func(c *fiber.Ctx) error {
		id := c.Cookies(name)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				Secure:   deps.SecureCookie,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionLocal, id)
		withLogAttrs(c, "session", id)
		return c.Next()
	}
}

// sessionID returns the id set by SessionMiddleware.
func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}
