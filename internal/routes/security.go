package routes

import (
    "net/http"

    "github.com/gofiber/fiber/v2"
)

type passwordRequest struct {
    Current  string `json:"current"`
    Password string `json:"password"`
    Confirm  string `json:"confirm"`
}

// RegisterSecurityRoutes wires app password and seed reveal endpoints.
func RegisterSecurityRoutes(r fiber.Router, d Deps, revealLimiter fiber.Handler) {
    sec := d.Security
    group := r.Group("/security")

    group.Get("/password", func(c *fiber.Ctx) error {
        return c.Status(http.StatusOK).JSON(fiber.Map{"enabled": sec.HasPassword()})
    })
    group.Post("/password", func(c *fiber.Ctx) error {
        var req passwordRequest
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        if err := sec.SetPassword(req.Password, req.Confirm); err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusCreated).JSON(fiber.Map{"enabled": true})
    })
    group.Put("/password", func(c *fiber.Ctx) error {
        var req passwordRequest
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        if err := sec.ChangePassword(req.Current, req.Password, req.Confirm); err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusOK).JSON(fiber.Map{"enabled": true})
    })
    group.Delete("/password", func(c *fiber.Ctx) error {
        sec.DisablePassword()
        return c.Status(http.StatusOK).JSON(fiber.Map{"enabled": false})
    })

    reveal := func(c *fiber.Ctx) error {
        var req struct {
            Password   string `json:"password"`
            RevealCode string `json:"revealCode"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        seed, err := sec.RevealSeed(c.UserContext(), req.Password, req.RevealCode)
        if err != nil {
            return httpError(err)
        }
        c.Set(fiber.HeaderCacheControl, "no-store")
        return c.Status(http.StatusOK).JSON(fiber.Map{"seedPhrase": seed})
    }
    if revealLimiter != nil {
        group.Post("/seed/reveal", revealLimiter, reveal)
    } else {
        group.Post("/seed/reveal", reveal)
    }
}
