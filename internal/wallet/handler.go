package wallet

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the provider catalog.
type Handler struct {
	detector Detector
}

// NewHandler builds a provider catalog HTTP handler.
func NewHandler(detector Detector) *Handler {
	return &Handler{detector: detector}
}

type providerResponse struct {
	Provider
	Installed bool `json:"installed"`
}

// List returns every catalog provider with its best-effort install status.
func (h *Handler) List(c *fiber.Ctx) error {
	providers := Providers()
	out := make([]providerResponse, 0, len(providers))
	for _, p := range providers {
		installed := false
		if h.detector != nil {
			installed = h.detector.IsInstalled(c.UserContext(), p.ID)
		}
		out = append(out, providerResponse{Provider: p, Installed: installed})
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Activate asks the detector to open the provider.
func (h *Handler) Activate(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := LookupProvider(id); !ok {
		return fiber.NewError(http.StatusNotFound, "unknown wallet provider")
	}
	activated := false
	if h.detector != nil {
		activated = h.detector.Activate(c.UserContext(), id)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"id": id, "activated": activated})
}
