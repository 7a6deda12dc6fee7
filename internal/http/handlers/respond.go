package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "techhub/internal/log"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: message, Code: code})
}

// reject logs a security event and answers with an error. The status is set
// first so the log line carries it.
func reject(c *fiber.Ctx, status int, action string, fields map[string]any, code, message string) error {
	c.Status(status)
	applog.Security(c, action, fields)
	return respondError(c, status, code, message)
}

// ensureSID returns the session cookie, issuing a new one when absent.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sid
}
