package routes

import (
    "net/http"

    "github.com/gofiber/fiber/v2"

    "github.com/ucid-labs/ucid/internal/middleware"
    "github.com/ucid-labs/ucid/internal/wallet"
    "github.com/ucid-labs/ucid/internal/workflow"
)

// RegisterWalletRoutes wires the provider catalog and wallet detail endpoints.
func RegisterWalletRoutes(r fiber.Router, d Deps) {
    flow := d.Wallets
    providers := wallet.NewHandler(d.Detector)

    r.Get("/providers", providers.List)
    r.Post("/providers/:id/activate", providers.Activate)
    r.Post("/providers/:id/connect", func(c *fiber.Ctx) error {
        detail, ack, err := flow.ConnectProvider(c.UserContext(), c.Params("id"))
        if err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusCreated).JSON(fiber.Map{"detail": detail, "synced": synced(c, ack)})
    })

    group := r.Group("/wallets")

    group.Post("/custom", func(c *fiber.Ctx) error {
        var req struct {
            Name       string   `json:"name"`
            Words      []string `json:"words"`
            PrivateKey string   `json:"privateKey"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        w, ack, err := flow.AddCustomWallet(c.UserContext(), req.Name, req.Words, req.PrivateKey)
        if err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusCreated).JSON(fiber.Map{"wallet": newWalletView(w), "synced": synced(c, ack)})
    })

    group.Post("/:id/authorize", func(c *fiber.Ctx) error {
        var req struct {
            Action   string `json:"action"`
            Method   string `json:"method"`
            Password string `json:"password"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        id := c.Params("id")
        if _, ok := d.Session.Wallet(id); !ok {
            return httpError(workflow.ErrUnknownWallet)
        }
        var (
            token string
            err   error
        )
        switch req.Method {
        case workflow.MethodFaceScan:
            token, err = d.Gate.AuthorizeFaceScan(c.UserContext(), id, workflow.Action(req.Action))
        case workflow.MethodPassword, "":
            token, err = d.Gate.AuthorizePassword(id, workflow.Action(req.Action), req.Password)
        default:
            return fiber.NewError(http.StatusBadRequest, "unsupported authentication method")
        }
        if err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusOK).JSON(fiber.Map{"token": token})
    })

    detail := group.Group("/detail")
    reply := func(c *fiber.Ctx, dt workflow.Detail, err error) error {
        if err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusOK).JSON(dt)
    }

    detail.Get("", func(c *fiber.Ctx) error {
        dt, ok := flow.Current()
        if !ok {
            return httpError(workflow.ErrNoActiveDetail)
        }
        return reply(c, dt, nil)
    })
    detail.Post("/begin", middleware.ActionToken(d.Gate), func(c *fiber.Ctx) error {
        pending, ok := c.Locals(middleware.PendingActionLocal).(workflow.PendingAction)
        if !ok {
            return httpError(workflow.ErrInvalidToken)
        }
        dt, err := flow.BeginPending(pending)
        return reply(c, dt, err)
    })
    detail.Post("/mode", func(c *fiber.Ctx) error {
        dt, err := flow.ToggleMode()
        return reply(c, dt, err)
    })
    detail.Post("/seed", func(c *fiber.Ctx) error {
        var req struct {
            Words []string `json:"words"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        dt, err := flow.SubmitSeedPhrase(req.Words)
        return reply(c, dt, err)
    })
    detail.Post("/private-key", func(c *fiber.Ctx) error {
        var req struct {
            PrivateKey string `json:"privateKey"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        dt, ack, err := flow.SubmitPrivateKey(c.UserContext(), req.PrivateKey)
        if err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusOK).JSON(fiber.Map{"detail": dt, "synced": synced(c, ack)})
    })
    detail.Post("/close", func(c *fiber.Ctx) error {
        flow.Close()
        return c.SendStatus(http.StatusNoContent)
    })
}
