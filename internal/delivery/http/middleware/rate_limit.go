package middleware

import (
	"sync"
	"time"

	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// limiterIdle is how long an unused client limiter is kept.
const limiterIdle = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu      sync.Mutex
	clients map[string]*client
	rps     rate.Limit
	burst   int
	swept   time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) > limiterIdle {
		for k, cl := range s.clients {
			if now.Sub(cl.lastSeen) > limiterIdle {
				delete(s.clients, k)
			}
		}
		s.swept = now
	}

	cl, ok := s.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// RateLimitWrites throttles POST, PUT and DELETE per caller: the user id
// when authenticated, the client IP otherwise. Reads pass through.
func RateLimitWrites(perSecond float64, burst int) fiber.Handler {
	set := &limiterSet{
		clients: make(map[string]*client),
		rps:     rate.Limit(perSecond),
		burst:   burst,
		swept:   time.Now(),
	}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete:
		default:
			return c.Next()
		}

		key := c.IP()
		if a, ok := actorFrom(c); ok && a.UserID != "" {
			key = "user:" + a.UserID
		}
		if !set.get(key, time.Now()).Allow() {
			c.Set(fiber.HeaderRetryAfter, "1")
			return utils.SendError(c, errors.ErrTooManyRequests)
		}
		return c.Next()
	}
}
