package middleware

import (
    "net/http"
    "strings"

    "github.com/gofiber/fiber/v2"

    "github.com/ucid-labs/ucid/internal/workflow"
)

// ActionTokenHeader carries the pending wallet action token.
const ActionTokenHeader = "X-Wallet-Action-Token"

// PendingActionLocal is the fiber Locals key holding the verified action.
const PendingActionLocal = "pending_wallet_action"

// ActionToken redeems the single-use wallet action token from the header or
// a bearer Authorization header and stores the pending action in Locals.
func ActionToken(gate *workflow.Gate) fiber.Handler {
    return func(c *fiber.Ctx) error {
        token := strings.TrimSpace(c.Get(ActionTokenHeader))
        if token == "" {
            authz := c.Get(fiber.HeaderAuthorization)
            if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
                token = strings.TrimSpace(authz[len("Bearer "):])
            }
        }
        if token == "" {
            return fiber.NewError(http.StatusUnauthorized, "missing wallet action token")
        }
        pending, err := gate.Redeem(token)
        if err != nil {
            return fiber.NewError(http.StatusUnauthorized, err.Error())
        }
        c.Locals(PendingActionLocal, pending)
        return c.Next()
    }
}
