package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ucid-labs/ucid/internal/qrpayload"
	"github.com/ucid-labs/ucid/internal/session"
	"github.com/ucid-labs/ucid/internal/workflow"
)

// httpError maps workflow errors onto HTTP statuses.
func httpError(err error) error {
	var weak *workflow.WeakPasswordError
	var imp *workflow.ImportError
	switch {
	case errors.As(err, &weak):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.As(err, &imp):
		return fiber.NewError(http.StatusUnprocessableEntity, imp.Message)
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrWalletConnected),
		errors.Is(err, session.ErrIdentityExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrInvalidPassword),
		errors.Is(err, workflow.ErrInvalidCurrent),
		errors.Is(err, workflow.ErrInvalidToken),
		errors.Is(err, workflow.ErrTokenRedeemed),
		errors.Is(err, workflow.ErrFaceScanFailed),
		errors.Is(err, workflow.ErrRevealCodeMismatch):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, workflow.ErrUnknownWallet),
		errors.Is(err, workflow.ErrUnknownProvider),
		errors.Is(err, workflow.ErrNoActiveDetail),
		errors.Is(err, workflow.ErrNoSeedPhraseStored):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrNameRequired),
		errors.Is(err, workflow.ErrIncompletePhrase),
		errors.Is(err, workflow.ErrPrivateKeyRequired),
		errors.Is(err, workflow.ErrUIDRequired),
		errors.Is(err, workflow.ErrSeedRequired),
		errors.Is(err, workflow.ErrRevealCodeFormat),
		errors.Is(err, workflow.ErrRevealCodeRepeat),
		errors.Is(err, workflow.ErrRevealCodeSequence),
		errors.Is(err, workflow.ErrPasswordMismatch),
		errors.Is(err, workflow.ErrPasswordTooLong),
		errors.Is(err, workflow.ErrPasswordNotSet),
		errors.Is(err, workflow.ErrInvalidAction),
		errors.Is(err, qrpayload.ErrMalformedPayload):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fiber.NewError(http.StatusGatewayTimeout, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}

// synced waits for a session ack and reports whether the registry caught up.
// A timeout only stops the wait.
func synced(c *fiber.Ctx, ack *session.Ack) bool {
	if ack == nil {
		return false
	}
	ok, err := ack.Wait(c.UserContext())
	return ok && err == nil
}
