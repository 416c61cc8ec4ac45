package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/ucid-labs/ucid/internal/registry"
)

// RegisterRegistryRoutes wires the credential registry endpoints. The debug
// group exposes every stored fingerprint and is only mounted when enabled.
func RegisterRegistryRoutes(r fiber.Router, h *registry.Handler, verifyLimiter fiber.Handler, debug bool) {
    group := r.Group("/registry")
    group.Post("/identities", h.Register)
    group.Get("/identities/:uid", h.Exists)
    if verifyLimiter != nil {
        group.Post("/identities/:uid/verify", verifyLimiter, h.Verify)
    } else {
        group.Post("/identities/:uid/verify", h.Verify)
    }
    group.Get("/identities/:uid/wallets", h.Wallets)
    group.Put("/identities/:uid/wallets", h.UpdateWallets)

    if !debug {
        return
    }
    dbg := group.Group("/debug")
    dbg.Get("/uids", h.ListAll)
    dbg.Get("/dump", h.DumpAll)
    dbg.Delete("/identities", h.ClearAll)
    dbg.Post("/identities/:uid/rewrite", h.Rewrite)
}
