package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit creates a per-client rate limiter middleware instance. Sessions
// are keyed by user when authenticated, by IP otherwise, so the login
// endpoint throttles credential guessing per source address.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			key := c.IP()
			if id, ok := SessionUserID(c); ok {
				key = fmt.Sprintf("%d", id)
			}
			return fmt.Sprintf("%s:%s", identifier, key)
		},
	})
}
