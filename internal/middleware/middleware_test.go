package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ucid-labs/ucid/internal/logging"
	"github.com/ucid-labs/ucid/internal/workflow"
)

func verifyApp(cache *redis.Client) *fiber.App {
	app := fiber.New()
	app.Post("/registry/identities/:uid/verify", VerifyRateLimit(cache, 2, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func postVerify(t *testing.T, app *fiber.App, uid string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/registry/identities/"+uid+"/verify", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestVerifyRateLimitLocal(t *testing.T) {
	app := verifyApp(nil)
	for i := 0; i < 2; i++ {
		if code := postVerify(t, app, "ABC"); code != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i, code)
		}
	}
	if code := postVerify(t, app, "ABC"); code != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := postVerify(t, app, "DEF"); code != fiber.StatusOK {
		t.Fatalf("other uid must not be limited, got %d", code)
	}
}

func TestVerifyRateLimitRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := verifyApp(cache)
	postVerify(t, app, "ABC")
	postVerify(t, app, "ABC")
	if code := postVerify(t, app, "ABC"); code != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	mr.FastForward(time.Minute + time.Second)
	if code := postVerify(t, app, "ABC"); code != fiber.StatusOK {
		t.Fatalf("expected window reset, got %d", code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c.UserContext()))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected request id echoed, got %q", resp.Header.Get(requestIDHeader))
	}
}

type staticPasswords string

func (p staticPasswords) VerifyPassword(pw string) bool { return string(p) == pw }

func TestActionToken(t *testing.T) {
	gate, err := workflow.NewGate("secret", time.Minute, staticPasswords("Secret1!"), nil, logging.Discard())
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	app := fiber.New()
	app.Post("/wallets/detail/begin", ActionToken(gate), func(c *fiber.Ctx) error {
		pending, _ := c.Locals(PendingActionLocal).(workflow.PendingAction)
		return c.SendString(pending.WalletID)
	})

	req := httptest.NewRequest(fiber.MethodPost, "/wallets/detail/begin", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	token, err := gate.AuthorizePassword("metamask", workflow.ActionShow, "Secret1!")
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	req = httptest.NewRequest(fiber.MethodPost, "/wallets/detail/begin", nil)
	req.Header.Set(ActionTokenHeader, token)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodPost, "/wallets/detail/begin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a reused token, got %d", resp.StatusCode)
	}
}
