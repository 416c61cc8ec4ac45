package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader  = "Idempotency-Key"
	idempotencyReplayed   = "Idempotent-Replayed"
	idempotencyPrefix     = "idempotency:v2:"
	idempotencyOpTimeout  = 2 * time.Second
	maxIdempotencyKeySize = 128
)

// IdempotencyConfig scopes response replay to the mutations that must not
// run twice, such as wallet additions and identity imports.
type IdempotencyConfig struct {
	Cache  *redis.Client
	TTL    time.Duration
	Logger *slog.Logger
	// Scopes are path prefixes eligible for replay. Empty means every path.
	Scopes []string
}

// idempotencyRecord is a reservation while Status is zero and a stored
// response afterwards. Digest binds the key to one request body.
type idempotencyRecord struct {
	Digest      string `json:"digest"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency replays the stored response of a mutation that repeats an
// Idempotency-Key header with the same body. Requests without the header,
// safe methods and paths outside the scopes pass through.
func Idempotency(cfg IdempotencyConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !mutating(c.Method()) || !inScope(c.Path(), cfg.Scopes) {
			return c.Next()
		}
		key := strings.TrimSpace(c.Get(idempotencyKeyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeySize {
			return fiber.NewError(http.StatusBadRequest, "Idempotency-Key too long")
		}

		cacheKey := idempotencyPrefix + c.Method() + ":" + c.Path() + ":" + key
		sum := sha256.Sum256(c.Body())
		digest := hex.EncodeToString(sum[:])
		logger := cfg.Logger.With(slog.String("idempotency_key", key), slog.String("path", c.Path()))

		ctx, cancel := context.WithTimeout(context.Background(), idempotencyOpTimeout)
		defer cancel()

		reservation, _ := json.Marshal(idempotencyRecord{Digest: digest})
		reserved, err := cfg.Cache.SetNX(ctx, cacheKey, reservation, cfg.TTL).Result()
		if err != nil {
			logger.Error("idempotency.reserve failed", slog.Any("error", err))
			return fiber.NewError(http.StatusServiceUnavailable, "idempotency store unavailable")
		}
		if !reserved {
			return replay(ctx, c, cfg.Cache, cacheKey, digest, logger)
		}

		if err := c.Next(); err != nil {
			release(cfg.Cache, cacheKey)
			return err
		}

		status := c.Response().StatusCode()
		if status >= http.StatusInternalServerError {
			// let the client retry failures
			release(cfg.Cache, cacheKey)
			return nil
		}
		record := idempotencyRecord{
			Digest:      digest,
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		payload, err := json.Marshal(record)
		if err == nil {
			err = cfg.Cache.Set(ctx, cacheKey, payload, cfg.TTL).Err()
		}
		if err != nil {
			logger.Warn("idempotency.persist failed", slog.Any("error", err))
			release(cfg.Cache, cacheKey)
		}
		return nil
	}
}

func replay(ctx context.Context, c *fiber.Ctx, cache *redis.Client, cacheKey, digest string, logger *slog.Logger) error {
	raw, err := cache.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return fiber.NewError(http.StatusConflict, "duplicate request, retry")
	}
	if err != nil {
		logger.Error("idempotency.lookup failed", slog.Any("error", err))
		return fiber.NewError(http.StatusServiceUnavailable, "idempotency store unavailable")
	}

	var record idempotencyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		logger.Warn("idempotency.decode failed", slog.Any("error", err))
		return fiber.NewError(http.StatusConflict, "duplicate request")
	}
	if record.Digest != digest {
		return fiber.NewError(http.StatusUnprocessableEntity, "Idempotency-Key reused with a different request body")
	}
	if record.Status == 0 {
		return fiber.NewError(http.StatusConflict, "duplicate request currently processing")
	}

	logger.Info("idempotency.replayed", slog.Int("status", record.Status))
	c.Set(idempotencyReplayed, "true")
	if record.ContentType != "" {
		c.Set(fiber.HeaderContentType, record.ContentType)
	}
	return c.Status(record.Status).Send(record.Body)
}

func release(cache *redis.Client, cacheKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), idempotencyOpTimeout)
	defer cancel()
	cache.Del(ctx, cacheKey)
}

func mutating(method string) bool {
	switch strings.ToUpper(method) {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	default:
		return false
	}
}

func inScope(path string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, prefix := range scopes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
