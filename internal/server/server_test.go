package server

import (
    "bytes"
    "context"
    "encoding/json"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/ucid-labs/ucid/internal/config"
    "github.com/ucid-labs/ucid/internal/kvstore"
    "github.com/ucid-labs/ucid/internal/logging"
)

func testConfig() config.Config {
    return config.Config{
        AppName:                 "UCID-test",
        AppEnv:                  "test",
        StoreDriver:             config.DriverMemory,
        Namespace:               "ucid",
        ActionTokenSecret:       "test-secret",
        ActionTokenTTL:          time.Minute,
        NotificationTTL:         time.Minute,
        VerifyAttemptsPerMinute: 5,
        DebugEndpoints:          true,
        FaceScanSuccessRate:     1,
        IdempotencyTTL:          time.Hour,
    }
}

func newTestServer(t *testing.T) *Server {
    t.Helper()
    store := kvstore.NewMemory()
    srv, err := New(context.Background(), testConfig(), store, nil, logging.Discard())
    if err != nil {
        t.Fatalf("new server: %v", err)
    }
    t.Cleanup(func() {
        _ = srv.Shutdown(context.Background())
        _ = store.Close()
    })
    return srv
}

func call(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) (int, map[string]any) {
    t.Helper()
    var reader io.Reader
    if body != nil {
        raw, err := json.Marshal(body)
        if err != nil {
            t.Fatalf("marshal: %v", err)
        }
        reader = bytes.NewReader(raw)
    }
    req := httptest.NewRequest(method, path, reader)
    req.Header.Set("Content-Type", "application/json")
    for k, v := range headers {
        req.Header.Set(k, v)
    }
    resp, err := srv.App().Test(req, -1)
    if err != nil {
        t.Fatalf("%s %s: %v", method, path, err)
    }
    defer resp.Body.Close()
    raw, _ := io.ReadAll(resp.Body)
    out := map[string]any{}
    if len(raw) > 0 && raw[0] == '{' {
        if err := json.Unmarshal(raw, &out); err != nil {
            t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
        }
    }
    return resp.StatusCode, out
}

func expectStatus(t *testing.T, got, want int, what string) {
    t.Helper()
    if got != want {
        t.Fatalf("%s: expected status %d, got %d", what, want, got)
    }
}

func TestHealthz(t *testing.T) {
    srv := newTestServer(t)
    status, body := call(t, srv, http.MethodGet, "/healthz", nil, nil)
    expectStatus(t, status, http.StatusOK, "healthz")
    checks, _ := body["status"].(map[string]any)
    if checks["memory"] != "ok" || checks["redis"] != "disabled" {
        t.Fatalf("unexpected health body: %v", body)
    }
}

func TestCreateIdentityEndToEnd(t *testing.T) {
    srv := newTestServer(t)

    status, body := call(t, srv, http.MethodPost, "/api/v1/registration/create", nil, nil)
    expectStatus(t, status, http.StatusOK, "choose create")
    if body["step"] != "create-name" {
        t.Fatalf("expected create-name, got %v", body["step"])
    }

    status, body = call(t, srv, http.MethodPost, "/api/v1/registration/name", map[string]string{"name": "Alice"}, nil)
    expectStatus(t, status, http.StatusOK, "submit name")
    seed, _ := body["seedPhrase"].(string)
    if len(strings.Fields(seed)) != 12 {
        t.Fatalf("expected 12-word seed phrase, got %q", seed)
    }

    status, _ = call(t, srv, http.MethodPost, "/api/v1/registration/complete", map[string]string{"revealCode": "112233"}, nil)
    expectStatus(t, status, http.StatusBadRequest, "repeated reveal code")

    status, body = call(t, srv, http.MethodPost, "/api/v1/registration/complete", map[string]string{"revealCode": "135790"}, nil)
    expectStatus(t, status, http.StatusOK, "complete")
    if body["step"] != "completed" {
        t.Fatalf("expected completed, got %v", body["step"])
    }

    status, body = call(t, srv, http.MethodGet, "/api/v1/session", nil, nil)
    expectStatus(t, status, http.StatusOK, "session")
    uid, _ := body["uid"].(string)
    if len(uid) != 16 || body["isRegistered"] != true || body["userName"] != "Alice" {
        t.Fatalf("unexpected session: %v", body)
    }
    if _, leaked := body["seedPhrase"]; leaked {
        t.Fatalf("session view must not expose the seed phrase")
    }

    status, body = call(t, srv, http.MethodPost, "/api/v1/registry/identities/"+uid+"/verify", map[string]string{"seedPhrase": seed}, nil)
    expectStatus(t, status, http.StatusOK, "verify")
    if body["valid"] != true {
        t.Fatalf("expected shown seed phrase to verify, got %v", body)
    }

    status, body = call(t, srv, http.MethodGet, "/api/v1/session/qr", nil, nil)
    expectStatus(t, status, http.StatusOK, "qr")
    if body["payload"] != "UID:"+uid+"|SEED:"+seed {
        t.Fatalf("unexpected qr payload %v", body["payload"])
    }

    status, body = call(t, srv, http.MethodGet, "/api/v1/registry/debug/uids", nil, nil)
    expectStatus(t, status, http.StatusOK, "debug uids")
    uids, _ := body["uids"].([]any)
    if len(uids) != 1 || uids[0] != uid {
        t.Fatalf("unexpected uids %v", uids)
    }

    status, _ = call(t, srv, http.MethodPost, "/api/v1/security/password", map[string]string{"password": "Secr3t!", "confirm": "Secr3t!"}, nil)
    expectStatus(t, status, http.StatusCreated, "set password")

    status, _ = call(t, srv, http.MethodPost, "/api/v1/security/seed/reveal", map[string]string{"password": "Secr3t!", "revealCode": "135797"}, nil)
    expectStatus(t, status, http.StatusUnauthorized, "reveal with wrong code")

    status, body = call(t, srv, http.MethodPost, "/api/v1/security/seed/reveal", map[string]string{"password": "Secr3t!", "revealCode": "135790"}, nil)
    expectStatus(t, status, http.StatusOK, "reveal")
    if body["seedPhrase"] != seed {
        t.Fatalf("revealed seed mismatch")
    }

    status, _ = call(t, srv, http.MethodPost, "/api/v1/session/logout", nil, nil)
    expectStatus(t, status, http.StatusNoContent, "logout")

    _, body = call(t, srv, http.MethodGet, "/api/v1/session", nil, nil)
    if body["isRegistered"] != false || body["uid"] != "" {
        t.Fatalf("expected cleared session, got %v", body)
    }
}

func TestRegistrationRejectsOutOfOrderSteps(t *testing.T) {
    srv := newTestServer(t)
    status, _ := call(t, srv, http.MethodPost, "/api/v1/registration/complete", map[string]string{"revealCode": "135790"}, nil)
    expectStatus(t, status, http.StatusConflict, "complete from initial")

    status, body := call(t, srv, http.MethodGet, "/api/v1/registration", nil, nil)
    expectStatus(t, status, http.StatusOK, "state")
    if body["step"] != "initial" {
        t.Fatalf("state must not move on a rejected transition, got %v", body["step"])
    }
}

func TestWalletDetailRequiresActionToken(t *testing.T) {
    srv := newTestServer(t)

    status, _ := call(t, srv, http.MethodPut, "/api/v1/session/name", map[string]string{"name": "Bob"}, nil)
    expectStatus(t, status, http.StatusOK, "set name")

    status, body := call(t, srv, http.MethodPost, "/api/v1/providers/metamask/connect", nil, nil)
    expectStatus(t, status, http.StatusCreated, "connect")
    detail, _ := body["detail"].(map[string]any)
    if detail["walletId"] != "metamask" || detail["step"] != "seedPhrase" || detail["viewMode"] != false {
        t.Fatalf("unexpected detail %v", detail)
    }
    if body["synced"] != true {
        t.Fatalf("expected registry sync for a registered identity, got %v", body["synced"])
    }

    status, _ = call(t, srv, http.MethodPost, "/api/v1/providers/unknown/connect", nil, nil)
    expectStatus(t, status, http.StatusNotFound, "unknown provider")

    status, _ = call(t, srv, http.MethodPost, "/api/v1/wallets/detail/begin", nil, nil)
    expectStatus(t, status, http.StatusUnauthorized, "begin without token")

    status, _ = call(t, srv, http.MethodPost, "/api/v1/wallets/metamask/authorize",
        map[string]string{"action": "show", "method": "password", "password": "Secr3t!"}, nil)
    expectStatus(t, status, http.StatusUnauthorized, "authorize without password configured")

    status, _ = call(t, srv, http.MethodPost, "/api/v1/security/password", map[string]string{"password": "Secr3t!", "confirm": "Secr3t!"}, nil)
    expectStatus(t, status, http.StatusCreated, "set password")

    status, body = call(t, srv, http.MethodPost, "/api/v1/wallets/metamask/authorize",
        map[string]string{"action": "edit", "method": "face_scan"}, nil)
    expectStatus(t, status, http.StatusOK, "authorize face scan")
    token, _ := body["token"].(string)
    if token == "" {
        t.Fatalf("expected token")
    }

    status, body = call(t, srv, http.MethodPost, "/api/v1/wallets/detail/begin", nil, map[string]string{"X-Wallet-Action-Token": token})
    expectStatus(t, status, http.StatusOK, "begin")
    if body["walletId"] != "metamask" || body["viewMode"] != false {
        t.Fatalf("unexpected detail %v", body)
    }

    status, _ = call(t, srv, http.MethodDelete, "/api/v1/session/wallets/metamask", nil, nil)
    expectStatus(t, status, http.StatusOK, "remove")
    status, _ = call(t, srv, http.MethodDelete, "/api/v1/session/wallets/metamask", nil, nil)
    expectStatus(t, status, http.StatusNotFound, "remove twice")
}

func TestConnectedWalletSecretsNeedTheGate(t *testing.T) {
    srv := newTestServer(t)

    status, _ := call(t, srv, http.MethodPut, "/api/v1/session/name", map[string]string{"name": "Carol"}, nil)
    expectStatus(t, status, http.StatusOK, "set name")
    status, _ = call(t, srv, http.MethodPost, "/api/v1/providers/okx/connect", nil, nil)
    expectStatus(t, status, http.StatusCreated, "connect")
    status, _ = call(t, srv, http.MethodPost, "/api/v1/wallets/detail/close", nil, nil)
    expectStatus(t, status, http.StatusNoContent, "close")

    status, _ = call(t, srv, http.MethodPost, "/api/v1/providers/okx/connect", nil, nil)
    expectStatus(t, status, http.StatusConflict, "reconnect")
    status, _ = call(t, srv, http.MethodGet, "/api/v1/wallets/detail", nil, nil)
    expectStatus(t, status, http.StatusNotFound, "no detail after reconnect")

    status, _ = call(t, srv, http.MethodPatch, "/api/v1/session/wallets/okx", map[string]string{"privateKey": "0xOTHER"}, nil)
    expectStatus(t, status, http.StatusForbidden, "patch secret")

    status, body := call(t, srv, http.MethodPatch, "/api/v1/session/wallets/okx", map[string]string{"name": "Trading"}, nil)
    expectStatus(t, status, http.StatusOK, "patch name")
    w, _ := body["wallet"].(map[string]any)
    if w["name"] != "Trading" {
        t.Fatalf("unexpected wallet %v", w)
    }
}

func TestSessionImportRequiresName(t *testing.T) {
    srv := newTestServer(t)

    status, _ := call(t, srv, http.MethodPost, "/api/v1/session/import",
        map[string]string{"name": " ", "uid": "ABCDEF0123456789", "seedPhrase": "alpha beta"}, nil)
    expectStatus(t, status, http.StatusBadRequest, "import without name")

    status, body := call(t, srv, http.MethodGet, "/api/v1/registry/identities/ABCDEF0123456789", nil, nil)
    expectStatus(t, status, http.StatusOK, "exists")
    if body["exists"] != false {
        t.Fatalf("registry must not be written, got %v", body)
    }
    _, body = call(t, srv, http.MethodGet, "/api/v1/session", nil, nil)
    if body["uid"] != "" {
        t.Fatalf("session must stay empty, got %v", body)
    }
}

func TestVerifyIsRateLimited(t *testing.T) {
    srv := newTestServer(t)
    path := "/api/v1/registry/identities/ABCDEF0123456789/verify"
    for i := 0; i < 5; i++ {
        status, _ := call(t, srv, http.MethodPost, path, map[string]string{"seedPhrase": "nope"}, nil)
        expectStatus(t, status, http.StatusOK, "verify attempt")
    }
    status, _ := call(t, srv, http.MethodPost, path, map[string]string{"seedPhrase": "nope"}, nil)
    expectStatus(t, status, http.StatusTooManyRequests, "verify over limit")
}

func TestNotificationsListAndDismiss(t *testing.T) {
    srv := newTestServer(t)
    status, _ := call(t, srv, http.MethodPost, "/api/v1/providers/phantom/connect", nil, nil)
    expectStatus(t, status, http.StatusCreated, "connect")

    req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
    resp, err := srv.App().Test(req, -1)
    if err != nil {
        t.Fatalf("notifications: %v", err)
    }
    defer resp.Body.Close()
    var list []map[string]any
    if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if len(list) != 1 || list[0]["type"] != "success" {
        t.Fatalf("unexpected notifications %v", list)
    }

    id, _ := list[0]["id"].(string)
    status, _ = call(t, srv, http.MethodDelete, "/api/v1/notifications/"+id, nil, nil)
    expectStatus(t, status, http.StatusNoContent, "dismiss")
    status, _ = call(t, srv, http.MethodDelete, "/api/v1/notifications/"+id, nil, nil)
    expectStatus(t, status, http.StatusNotFound, "dismiss twice")
}
