package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// KeyFunc picks the rate limit subject of a request.
type KeyFunc func(c *fiber.Ctx) string

// UIDKey limits by the :uid route param or a "uid" body field, falling back
// to the client IP.
func UIDKey(c *fiber.Ctx) string {
	if uid := strings.TrimSpace(c.Params("uid")); uid != "" {
		return uid
	}
	var req struct {
		UID string `json:"uid"`
	}
	_ = c.BodyParser(&req)
	if uid := strings.TrimSpace(req.UID); uid != "" {
		return uid
	}
	return c.IP()
}

// VerifyRateLimit caps credential verification attempts per subject per
// minute. Redis counters are shared across instances; without Redis an
// in-process token bucket per subject is used.
func VerifyRateLimit(cache *redis.Client, maxPerMin int, key KeyFunc) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	if key == nil {
		key = UIDKey
	}
	local := newLimiterStore(rate.Every(time.Minute/time.Duration(maxPerMin)), maxPerMin)

	return func(c *fiber.Ctx) error {
		subject := key(c)
		if cache == nil {
			if !local.get(subject).Allow() {
				return tooMany()
			}
			return c.Next()
		}

		redisKey := "rl:verify:" + subject
		cnt, err := cache.Incr(c.UserContext(), redisKey).Result()
		if err != nil {
			// fail open on cache errors, the local limiter still applies
			if !local.get(subject).Allow() {
				return tooMany()
			}
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), redisKey, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return tooMany()
		}
		return c.Next()
	}
}

func tooMany() error {
	return fiber.NewError(http.StatusTooManyRequests, "too many verification attempts, try again later")
}

type limiterStore struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func newLimiterStore(every rate.Limit, burst int) *limiterStore {
	return &limiterStore{limiters: make(map[string]*rate.Limiter), every: every, burst: burst}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.RLock()
	l, ok := s.limiters[key]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.limiters[key]; ok {
		return l
	}
	l = rate.NewLimiter(s.every, s.burst)
	s.limiters[key] = l
	return l
}
