package routes

import (
    "errors"
    "fmt"
    "net/http"
    "testing"

    "github.com/gofiber/fiber/v2"

    "github.com/ucid-labs/ucid/internal/qrpayload"
    "github.com/ucid-labs/ucid/internal/session"
    "github.com/ucid-labs/ucid/internal/workflow"
)

func TestHTTPErrorStatuses(t *testing.T) {
    cases := []struct {
        err  error
        want int
    }{
        {workflow.ErrInvalidTransition, http.StatusConflict},
        {session.ErrIdentityExists, http.StatusConflict},
        {workflow.ErrInvalidPassword, http.StatusUnauthorized},
        {workflow.ErrRevealCodeMismatch, http.StatusUnauthorized},
        {workflow.ErrUnknownProvider, http.StatusNotFound},
        {workflow.ErrIncompletePhrase, http.StatusBadRequest},
        {fmt.Errorf("wrapped: %w", qrpayload.ErrMalformedPayload), http.StatusBadRequest},
        {&workflow.WeakPasswordError{Issues: []string{"a digit"}}, http.StatusBadRequest},
        {&workflow.ImportError{UID: "X", Message: "nope"}, http.StatusUnprocessableEntity},
        {errors.New("disk on fire"), http.StatusInternalServerError},
    }
    for _, tc := range cases {
        var fe *fiber.Error
        if !errors.As(httpError(tc.err), &fe) {
            t.Fatalf("%v: expected fiber error", tc.err)
        }
        if fe.Code != tc.want {
            t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, fe.Code)
        }
    }
}

func TestHTTPErrorHidesInternalDetail(t *testing.T) {
    var fe *fiber.Error
    errors.As(httpError(errors.New("open /var/lib/ucid.db: permission denied")), &fe)
    if fe.Message != "internal error" {
        t.Fatalf("internal error message leaked: %q", fe.Message)
    }
}
