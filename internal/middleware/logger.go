// Package middleware holds fiber middleware shared by the HTTP servers of the harness
package middleware

import (
	"time"

	fiber "github.com/gofiber/fiber/v2"

	log "github.com/celestiaorg/pitests/internal/logger"
)

// Logger returns a middleware that logs HTTP requests at debug level
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Continue chain
		err := c.Next()

		latency := time.Since(start)
		fields := map[string]interface{}{
			"status":  c.Response().StatusCode(),
			"latency": latency,
			"method":  c.Method(),
			"path":    c.Path(),
			"route":   c.Route().Name,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		log.DebugWithFields("Request", fields)

		return err
	}
}
