package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"i4.energy/sms-gateway/eventbus"
	"i4.energy/sms-gateway/webhook"
)

type capturedRequest struct {
	body    []byte
	headers http.Header
}

func newRecordingServer(status int) (*httptest.Server, *[]capturedRequest, *sync.Mutex) {
	var mu sync.Mutex
	var reqs []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, capturedRequest{body: body, headers: r.Header.Clone()})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	return srv, &reqs, &mu
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDispatcherDeliversMatchingEvent(t *testing.T) {
	srv, reqs, mu := newRecordingServer(http.StatusOK)
	defer srv.Close()

	bus := eventbus.New()
	d, err := webhook.NewDispatcher(bus, nil, []webhook.Config{
		{URL: srv.URL, Secret: "topsecret"},
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	bus.Publish(eventbus.KindIncomingSms, map[string]string{"from": "+15551234567"})

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*reqs) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	got := (*reqs)[0]
	if got.headers.Get("X-Signature") == "" {
		t.Error("expected X-Signature header")
	}
	if got.headers.Get("X-Event-Id") == "" {
		t.Error("expected X-Event-Id header")
	}
	if got.headers.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got.headers.Get("Content-Type"))
	}

	var payload struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if payload.Kind != string(eventbus.KindIncomingSms) {
		t.Errorf("kind = %q, want %q", payload.Kind, eventbus.KindIncomingSms)
	}
}

func TestDispatcherIgnoresUnfilteredEvent(t *testing.T) {
	srv, reqs, mu := newRecordingServer(http.StatusOK)
	defer srv.Close()

	bus := eventbus.New()
	d, err := webhook.NewDispatcher(bus, nil, []webhook.Config{
		{URL: srv.URL, Secret: "topsecret", Events: []eventbus.Kind{eventbus.KindIncomingSms}},
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	bus.Publish(eventbus.KindModemLinkState, map[string]bool{"online": false})

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(*reqs) != 0 {
		t.Errorf("expected no deliveries, got %d", len(*reqs))
	}
}

func TestDispatcherRetriesOn5xxThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	bus := eventbus.New()
	d, err := webhook.NewDispatcher(bus, nil, []webhook.Config{
		{URL: srv.URL, Secret: "topsecret"},
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	bus.Publish(eventbus.KindIncomingSms, map[string]string{"from": "+15551234567"})

	waitFor(t, 3*time.Second, func() bool {
		return attempts.Load() >= 2
	})
}

func TestDispatcherDoesNotRetry4xx(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	bus := eventbus.New()
	d, err := webhook.NewDispatcher(bus, nil, []webhook.Config{
		{URL: srv.URL, Secret: "topsecret"},
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	bus.Publish(eventbus.KindIncomingSms, map[string]string{"from": "+15551234567"})

	waitFor(t, 1*time.Second, func() bool {
		return attempts.Load() == 1
	})
	time.Sleep(200 * time.Millisecond)
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", got)
	}
}

func TestNewDispatcherRejectsMissingSecret(t *testing.T) {
	bus := eventbus.New()
	_, err := webhook.NewDispatcher(bus, nil, []webhook.Config{
		{URL: "http://example.invalid"},
	})
	if err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestNewDispatcherRejectsMissingURL(t *testing.T) {
	bus := eventbus.New()
	_, err := webhook.NewDispatcher(bus, nil, []webhook.Config{
		{Secret: "topsecret"},
	})
	if err == nil {
		t.Fatal("expected error for missing URL")
	}
}
