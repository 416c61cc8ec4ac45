package registry

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ucid-labs/ucid/internal/wallet"
)

// Handler exposes registry endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a registry HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	UID              string          `json:"uid"`
	SeedPhrase       string          `json:"seedPhrase"`
	ConnectedWallets []wallet.Wallet `json:"connectedWallets"`
}

type verifyRequest struct {
	SeedPhrase string `json:"seedPhrase"`
}

type walletsRequest struct {
	Wallets []wallet.Wallet `json:"wallets"`
}

// Register handles identity registration.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UID == "" || req.SeedPhrase == "" {
		return fiber.NewError(http.StatusBadRequest, "uid and seedPhrase are required")
	}
	ok, err := h.service.Register(c.UserContext(), req.UID, req.SeedPhrase, req.ConnectedWallets)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	if !ok {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"uid": req.UID, "registered": false})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"uid": req.UID, "registered": true})
}

// Exists reports whether the UID is registered.
func (h *Handler) Exists(c *fiber.Ctx) error {
	uid := c.Params("uid")
	ok, err := h.service.Exists(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"uid": uid, "exists": ok})
}

// Verify checks a seed phrase against the stored fingerprint.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid := c.Params("uid")
	ok, err := h.service.Verify(c.UserContext(), uid, req.SeedPhrase)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"uid": uid, "valid": ok})
}

// Wallets returns the connected wallets of a UID; null when none.
func (h *Handler) Wallets(c *fiber.Ctx) error {
	uid := c.Params("uid")
	wallets, err := h.service.ConnectedWallets(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"uid": uid, "wallets": wallets})
}

// UpdateWallets replaces the connected wallets of a UID.
func (h *Handler) UpdateWallets(c *fiber.Ctx) error {
	var req walletsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid := c.Params("uid")
	ok, err := h.service.UpdateConnectedWallets(c.UserContext(), uid, req.Wallets)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	if !ok {
		return fiber.NewError(http.StatusNotFound, "uid not registered")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"uid": uid, "updated": true})
}

// ListAll returns every registered UID.
func (h *Handler) ListAll(c *fiber.Ctx) error {
	uids, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"uids": uids})
}

// DumpAll returns the raw mapping.
func (h *Handler) DumpAll(c *fiber.Ctx) error {
	records, err := h.service.DumpAll(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	return c.Status(http.StatusOK).JSON(records)
}

// ClearAll deletes every identity.
func (h *Handler) ClearAll(c *fiber.Ctx) error {
	ok, err := h.service.ClearAll(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"cleared": ok})
}

// Rewrite re-encodes the stored wallet list of a UID.
func (h *Handler) Rewrite(c *fiber.Ctx) error {
	uid := c.Params("uid")
	ok, err := h.service.RewriteConnectedWallets(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "registry storage failure")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"uid": uid, "rewritten": ok})
}
