package middleware

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// userLimiters hands out one token bucket per user id. Entries live for the
// process lifetime; the user population is small enough that eviction isn't
// worth the bookkeeping.
type userLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (u *userLimiters) get(userID string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()
	lim, ok := u.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(u.limit, u.burst)
		u.limiters[userID] = lim
	}
	return lim
}

// PerUserRateLimit throttles state-changing endpoints (start/claim/check-in)
// per authenticated user. Must run after UserContextMiddleware.
func PerUserRateLimit(perSecond float64, burst int) fiber.Handler {
	limiters := &userLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}

	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Next()
		}
		if !limiters.get(userID).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, slow down",
			})
		}
		return c.Next()
	}
}
