package routes

import (
    "net/http"

    "github.com/gofiber/fiber/v2"

    "github.com/ucid-labs/ucid/internal/workflow"
)

type registrationView struct {
    Step       string `json:"step"`
    Name       string `json:"name,omitempty"`
    SeedPhrase string `json:"seedPhrase,omitempty"`
    Imported   bool   `json:"imported,omitempty"`
}

func newRegistrationView(st workflow.RegistrationState) registrationView {
    v := registrationView{Step: st.Step()}
    switch s := st.(type) {
    case workflow.CreateSeed:
        v.Name = s.Name
        v.SeedPhrase = s.SeedPhrase
    case workflow.ImportDetails:
        v.Name = s.Name
    case workflow.Completed:
        v.Imported = s.Imported
    }
    return v
}

// RegisterRegistrationRoutes wires the create/import registration workflow.
func RegisterRegistrationRoutes(r fiber.Router, d Deps) {
    reg := d.Registration
    group := r.Group("/registration")

    reply := func(c *fiber.Ctx, st workflow.RegistrationState, err error) error {
        if err != nil {
            return httpError(err)
        }
        return c.Status(http.StatusOK).JSON(newRegistrationView(st))
    }

    group.Get("", func(c *fiber.Ctx) error {
        return reply(c, reg.State(), nil)
    })
    group.Post("/reset", func(c *fiber.Ctx) error {
        return reply(c, reg.Reset(), nil)
    })
    group.Post("/create", func(c *fiber.Ctx) error {
        st, err := reg.ChooseCreate()
        return reply(c, st, err)
    })
    group.Post("/import", func(c *fiber.Ctx) error {
        st, err := reg.ChooseImport()
        return reply(c, st, err)
    })
    group.Post("/back", func(c *fiber.Ctx) error {
        st, err := reg.Back()
        return reply(c, st, err)
    })
    group.Post("/name", func(c *fiber.Ctx) error {
        var req struct {
            Name string `json:"name"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        st, err := reg.SubmitName(req.Name)
        return reply(c, st, err)
    })
    group.Post("/complete", func(c *fiber.Ctx) error {
        var req struct {
            RevealCode string `json:"revealCode"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        st, err := reg.Complete(c.UserContext(), req.RevealCode)
        return reply(c, st, err)
    })
    group.Post("/details", func(c *fiber.Ctx) error {
        var req struct {
            Words []string `json:"words"`
            UID   string   `json:"uid"`
        }
        if err := c.BodyParser(&req); err != nil {
            return fiber.NewError(http.StatusBadRequest, err.Error())
        }
        st, err := reg.SubmitImport(c.UserContext(), req.Words, req.UID)
        return reply(c, st, err)
    })
}
