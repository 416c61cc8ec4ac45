package routes

import (
    "log/slog"
    "net/http"
    "strings"

    "github.com/gofiber/fiber/v2"

    "github.com/ucid-labs/ucid/internal/qrpayload"
    "github.com/ucid-labs/ucid/internal/session"
    "github.com/ucid-labs/ucid/internal/wallet"
    "github.com/ucid-labs/ucid/internal/workflow"
)

type sessionView struct {
    UserName         string       `json:"userName"`
    UID              string       `json:"uid"`
    IsRegistered     bool         `json:"isRegistered"`
    HasSeedPhrase    bool         `json:"hasSeedPhrase"`
    ConnectedWallets []walletView `json:"connectedWallets"`
}

type walletView struct {
    ID         string `json:"id"`
    Name       string `json:"name"`
    Icon       string `json:"icon"`
    Address    string `json:"address"`
    HasDetails bool   `json:"hasDetails"`
}

func newWalletView(w wallet.Wallet) walletView {
    return walletView{ID: w.ID, Name: w.Name, Icon: w.Icon, Address: w.Address, HasDetails: w.HasDetails()}
}

// newSessionView strips secrets from a session snapshot.
func newSessionView(st session.State) sessionView {
    wallets := make([]walletView, 0, len(st.ConnectedWallets))
    for _, w := range st.ConnectedWallets {
        wallets = append(wallets, newWalletView(w))
    }
    return sessionView{
        UserName:         st.UserName,
        UID:              st.UID,
        IsRegistered:     st.IsRegistered,
        HasSeedPhrase:    st.SeedPhrase != "",
        ConnectedWallets: wallets,
    }
}

// RegisterSessionRoutes wires the identity session endpoints.
func RegisterSessionRoutes(r fiber.Router, d Deps, verifyLimiter fiber.Handler) {
    sess := d.Session
    flow := d.Wallets
    group := r.Group("/session")

    group.Get("", func(c *fiber.Ctx) error {
        return c.Status(http.StatusOK).JSON(newSessionView(sess.Snapshot()))
    })

    group.Put("/name", func(c *fiber.Ctx) error {
        var req struct {
            Name string `json:"name"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        name := strings.TrimSpace(req.Name)
        if name == "" {
            return httpError(workflow.ErrNameRequired)
        }
        if err := sess.SetUserName(c.UserContext(), name); err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusOK).JSON(newSessionView(sess.Snapshot()))
    })

    importHandler := func(c *fiber.Ctx) error {
        var req struct {
            Name       string `json:"name"`
            SeedPhrase string `json:"seedPhrase"`
            UID        string `json:"uid"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        name := strings.TrimSpace(req.Name)
        if name == "" {
            return httpError(workflow.ErrNameRequired)
        }
        if strings.TrimSpace(req.SeedPhrase) == "" {
            return httpError(workflow.ErrSeedRequired)
        }
        if !sess.ImportWallet(c.UserContext(), name, req.SeedPhrase, strings.TrimSpace(req.UID)) {
            return fiber.NewError(http.StatusUnprocessableEntity, "invalid UID or seed phrase")
        }
        if d.Logger != nil {
            d.Logger.Info("session.import completed", slog.String("uid", sess.Snapshot().UID))
        }
        return c.Status(http.StatusOK).JSON(newSessionView(sess.Snapshot()))
    }
    if verifyLimiter != nil {
        group.Post("/import", verifyLimiter, importHandler)
    } else {
        group.Post("/import", importHandler)
    }

    group.Post("/logout", func(c *fiber.Ctx) error {
        if err := sess.Logout(c.UserContext()); err != nil {
            return httpError(err)
        }
        flow.Close()
        d.Registration.Reset()
        return c.SendStatus(http.StatusNoContent)
    })

    group.Post("/wallets", func(c *fiber.Ctx) error {
        var w wallet.Wallet
        if err := c.BodyParser(&w); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        if strings.TrimSpace(w.ID) == "" || strings.TrimSpace(w.Name) == "" {
            return fiber.NewError(http.StatusBadRequest, "wallet id and name are required")
        }
        if _, exists := sess.Wallet(w.ID); exists {
            return fiber.NewError(http.StatusConflict, "wallet already connected")
        }
        ack := sess.AddWallet(c.UserContext(), w)
        return c.Status(http.StatusCreated).JSON(fiber.Map{"wallet": newWalletView(w), "synced": synced(c, ack)})
    })

    group.Patch("/wallets/:id", func(c *fiber.Ctx) error {
        var patch wallet.Patch
        if err := c.BodyParser(&patch); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        // secrets change only through the gated detail flow
        if patch.SeedPhrase != nil || patch.PrivateKey != nil {
            return fiber.NewError(http.StatusForbidden, "wallet secrets require an authorized detail flow")
        }
        id := c.Params("id")
        if _, exists := sess.Wallet(id); !exists {
            return httpError(workflow.ErrUnknownWallet)
        }
        ack := sess.UpdateWallet(c.UserContext(), id, patch)
        w, _ := sess.Wallet(id)
        return c.Status(http.StatusOK).JSON(fiber.Map{"wallet": newWalletView(w), "synced": synced(c, ack)})
    })

    group.Delete("/wallets/:id", func(c *fiber.Ctx) error {
        id := c.Params("id")
        if _, exists := sess.Wallet(id); !exists {
            return httpError(workflow.ErrUnknownWallet)
        }
        ack := flow.Remove(c.UserContext(), id)
        return c.Status(http.StatusOK).JSON(fiber.Map{"id": id, "removed": true, "synced": synced(c, ack)})
    })

    group.Get("/qr", func(c *fiber.Ctx) error {
        st := sess.Snapshot()
        if !st.IsRegistered {
            return fiber.NewError(http.StatusNotFound, "no identity to share")
        }
        return c.Status(http.StatusOK).JSON(fiber.Map{"payload": qrpayload.Format(st.UID, st.SeedPhrase)})
    })

    group.Post("/qr/scan", func(c *fiber.Ctx) error {
        var req struct {
            Payload string `json:"payload"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        w, ack, err := flow.ImportScanned(c.UserContext(), req.Payload)
        if err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusCreated).JSON(fiber.Map{"wallet": newWalletView(w), "synced": synced(c, ack)})
    })

    credentials := func(c *fiber.Ctx) error {
        var req struct {
            UID        string `json:"uid"`
            SeedPhrase string `json:"seedPhrase"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        w, ack, err := flow.ImportCredentials(c.UserContext(), req.UID, req.SeedPhrase, workflow.SourceManual)
        if err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusCreated).JSON(fiber.Map{"wallet": newWalletView(w), "synced": synced(c, ack)})
    }
    if verifyLimiter != nil {
        group.Post("/credentials/import", verifyLimiter, credentials)
    } else {
        group.Post("/credentials/import", credentials)
    }
}
