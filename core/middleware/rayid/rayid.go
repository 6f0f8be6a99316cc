package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// HeaderName is the response header carrying the ray id.
	HeaderName = "X-Ray-ID"
	// LocalKey is the fiber locals key read by logger.WithRayID.
	LocalKey = "ray_id"
)

// New returns a middleware assigning a ray id to every request.
// An incoming X-Ray-ID header is kept so ids propagate across services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}
