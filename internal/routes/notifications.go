package routes

import (
    "net/http"

    "github.com/gofiber/fiber/v2"

    "github.com/ucid-labs/ucid/internal/notification"
)

// RegisterNotificationRoutes exposes the transient notification board.
func RegisterNotificationRoutes(r fiber.Router, board *notification.Board) {
    r.Get("/notifications", func(c *fiber.Ctx) error {
        return c.Status(http.StatusOK).JSON(board.Active())
    })
    r.Delete("/notifications/:id", func(c *fiber.Ctx) error {
        if !board.Dismiss(c.Params("id")) {
            return fiber.NewError(http.StatusNotFound, "notification not found")
        }
        return c.SendStatus(http.StatusNoContent)
    })
}
