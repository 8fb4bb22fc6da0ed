package backendtest

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// JSON answers status with body encoded as JSON
func JSON(status int, body any) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(status).JSON(body)
	}
}

// Result answers an ActionResult body
func Result(status string, code int, message string) fiber.Handler {
	return JSON(code, fiber.Map{
		"status":      status,
		"status_code": code,
		"message":     message,
	})
}

// Raw answers body verbatim with the given content type
func Raw(status int, contentType, body string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, contentType)
		return c.Status(status).SendString(body)
	}
}

// Delay waits d before running h
func Delay(d time.Duration, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		time.Sleep(d)
		return h(c)
	}
}

// Sequence runs the next handler of hs on each call and repeats the last one
// once exhausted.
func Sequence(hs ...fiber.Handler) fiber.Handler {
	var mu sync.Mutex
	i := 0
	return func(c *fiber.Ctx) error {
		mu.Lock()
		h := hs[i]
		if i < len(hs)-1 {
			i++
		}
		mu.Unlock()
		return h(c)
	}
}
