package routes

import (
    "fmt"
    "log/slog"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/adaptor"
    "github.com/gofiber/fiber/v2/middleware/recover"
    "github.com/redis/go-redis/v9"

    "github.com/ucid-labs/ucid/internal/config"
    "github.com/ucid-labs/ucid/internal/kvstore"
    "github.com/ucid-labs/ucid/internal/metrics"
    "github.com/ucid-labs/ucid/internal/middleware"
    "github.com/ucid-labs/ucid/internal/notification"
    "github.com/ucid-labs/ucid/internal/registry"
    "github.com/ucid-labs/ucid/internal/session"
    "github.com/ucid-labs/ucid/internal/wallet"
    "github.com/ucid-labs/ucid/internal/workflow"
)

// replayScopes are the mutations an Idempotency-Key protects.
var replayScopes = []string{
    "/api/v1/registry/identities",
    "/api/v1/session/",
    "/api/v1/registration/",
    "/api/v1/wallets/custom",
    "/api/v1/providers/",
}

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
    Cfg    config.Config
    Store  kvstore.Store
    Cache  *redis.Client
    Logger *slog.Logger

    Metrics       *metrics.Metrics
    Registry      *registry.Service
    Session       *session.Store
    Registration  *workflow.Registration
    Wallets       *workflow.WalletFlow
    Gate          *workflow.Gate
    Security      *workflow.Security
    Detector      wallet.Detector
    Notifications *notification.Board
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
    if d.Store == nil || d.Registry == nil || d.Session == nil {
        return fmt.Errorf("routes: store, registry and session are required")
    }
    if d.Registration == nil || d.Wallets == nil || d.Gate == nil || d.Security == nil {
        return fmt.Errorf("routes: workflows are required")
    }

    // Middlewares
    app.Use(recover.New())
    app.Use(middleware.RequestID())
    app.Use(middleware.Audit(d.Logger))
    if d.Cache != nil {
        app.Use(middleware.Idempotency(middleware.IdempotencyConfig{
            Cache:  d.Cache,
            TTL:    d.Cfg.IdempotencyTTL,
            Logger: d.Logger,
            Scopes: replayScopes,
        }))
    }

    // Health and metrics
    RegisterHealthRoutes(app, d)
    if d.Metrics != nil {
        app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
    }

    api := app.Group("/api/v1")
    api.Get("/ping", func(c *fiber.Ctx) error {
        reqID, _ := c.Locals("X-Request-ID").(string)
        return c.Status(http.StatusOK).JSON(fiber.Map{
            "status":     "ok",
            "request_id": reqID,
            "timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    verifyLimiter := middleware.VerifyRateLimit(d.Cache, d.Cfg.VerifyAttemptsPerMinute, nil)

    RegisterRegistryRoutes(api, registry.NewHandler(d.Registry), verifyLimiter, d.Cfg.DebugEndpoints)
    RegisterSessionRoutes(api, d, verifyLimiter)
    RegisterRegistrationRoutes(api, d)
    RegisterWalletRoutes(api, d)
    RegisterSecurityRoutes(api, d, middleware.VerifyRateLimit(d.Cache, d.Cfg.VerifyAttemptsPerMinute, nil))
    if d.Notifications != nil {
        RegisterNotificationRoutes(api, d.Notifications)
    }

    return nil
}
