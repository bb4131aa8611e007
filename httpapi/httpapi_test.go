package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"i4.energy/sms-gateway/eventbus"
	"i4.energy/sms-gateway/store"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")[:32]
}

func newTestHandler(t *testing.T, authToken string) *Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := store.Connect(store.Config{DSN: dsn, EncryptionKey: testKey()})
	if err != nil {
		t.Fatalf("store.Connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(nil, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewHandler(Config{
		Addr:      "127.0.0.1:0",
		AuthToken: authToken,
		Store:     s,
		Bus:       eventbus.New(),
		LogLevel:  new(slog.LevelVar),
		Logger:    logger,
	})
	t.Cleanup(func() { h.linkSub.Close() })
	return h
}

func do(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestBearerAuthRejectsMissingToken(t *testing.T) {
	h := newTestHandler(t, "topsecret")

	rec := do(h, http.MethodGet, "/sys/phone-number", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if body.Message == "" {
		t.Error("expected non-empty error message")
	}
}

func TestBearerAuthAllowsExemptPaths(t *testing.T) {
	h := newTestHandler(t, "topsecret")

	for _, path := range []string{"/sys/version", "/sys/healthz"} {
		rec := do(h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("exempt path %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestBearerAuthAcceptsCorrectToken(t *testing.T) {
	h := newTestHandler(t, "topsecret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/db/latest-numbers", nil)
	req.Header.Set("Authorization", "Bearer topsecret")
	h.server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBearerAuthDisabledWhenTokenEmpty(t *testing.T) {
	h := newTestHandler(t, "")

	rec := do(h, http.MethodGet, "/sys/version", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSysHealthzReportsOfflineUntilLinkUp(t *testing.T) {
	h := newTestHandler(t, "")

	rec := do(h, http.MethodGet, "/sys/healthz", "")
	var body healthzResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Online {
		t.Error("expected offline before any modem_link_state event")
	}
}

func TestFriendlyNameSetThenGet(t *testing.T) {
	h := newTestHandler(t, "")

	setRec := do(h, http.MethodPost, "/friendly-names", `{"phone_number":"+15551234567","friendly_name":"Alice"}`)
	if setRec.Code != http.StatusOK {
		t.Fatalf("set: expected 200, got %d: %s", setRec.Code, setRec.Body.String())
	}

	getRec := do(h, http.MethodGet, "/friendly-names/+15551234567", "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", getRec.Code, getRec.Body.String())
	}
	var body friendlyNameResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.FriendlyName != "Alice" {
		t.Errorf("expected friendly name Alice, got %q", body.FriendlyName)
	}
}

func TestGetFriendlyNameNotFoundMapsTo404(t *testing.T) {
	h := newTestHandler(t, "")

	rec := do(h, http.MethodGet, "/friendly-names/+15550000000", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if body.Message == "" {
		t.Error("expected non-empty error message")
	}
}

func TestSetFriendlyNameRejectsMissingPhoneNumber(t *testing.T) {
	h := newTestHandler(t, "")

	rec := do(h, http.MethodPost, "/friendly-names", `{"friendly_name":"Alice"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
