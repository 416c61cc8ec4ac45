package routes

import (
    "context"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
)

const healthCheckKey = "healthz_check"

// RegisterHealthRoutes adds liveness/readiness style endpoints.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
    app.Get("/healthz", func(c *fiber.Ctx) error {
        storeStatus := "ok"
        redisStatus := "disabled"

        ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
        defer cancel()
        if _, _, err := d.Store.Get(ctx, healthCheckKey); err != nil {
            storeStatus = err.Error()
        }
        if d.Cache != nil {
            redisStatus = "ok"
            if err := d.Cache.Ping(ctx).Err(); err != nil {
                redisStatus = err.Error()
            }
        }
        status := http.StatusOK
        if storeStatus != "ok" || (redisStatus != "ok" && redisStatus != "disabled") {
            status = http.StatusServiceUnavailable
        }
        return c.Status(status).JSON(fiber.Map{
            "status":    fiber.Map{d.Cfg.StoreDriver: storeStatus, "redis": redisStatus},
            "timestamp": time.Now().UTC().Format(time.RFC3339Nano),
        })
    })
}
