package event

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pauljbernard/headelf/internal/model"
)

func init() {
	retryBackoff = 10 * time.Millisecond
}

func TestSendGenericFormat(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got %s", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Token") != "secret" {
			t.Errorf("expected custom header, got %q", r.Header.Get("X-Token"))
		}
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := WebhookConfig{URL: srv.URL, Format: "generic", Headers: map[string]string{"X-Token": "secret"}}
	if err := Send(cfg, NewExtensionRegistered(model.Government)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received["type"] != "extension_registered" {
		t.Errorf("expected type extension_registered, got %v", received["type"])
	}
	if received["industry"] != "GOVERNMENT" {
		t.Errorf("expected industry GOVERNMENT, got %v", received["industry"])
	}
}

func TestSendSlackFormat(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := WebhookConfig{URL: srv.URL, Format: "slack"}
	if err := Send(cfg, NewActiveIndustriesUpdated([]model.IndustryVertical{model.Manufacturing})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blocks, ok := received["blocks"].([]any)
	if !ok || len(blocks) != 2 {
		t.Fatalf("expected 2 slack blocks, got %v", received["blocks"])
	}
}

func TestSendRetriesOn5xx(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := Send(WebhookConfig{URL: srv.URL}, NewExtensionRegistered(model.Government)); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestSendNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := Send(WebhookConfig{URL: srv.URL}, NewExtensionRegistered(model.Government)); err == nil {
		t.Fatal("expected error on 400")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestWebhookSinkFiltersEvents(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink([]WebhookConfig{
		{URL: srv.URL, Events: []Type{DecisionRouted}},
	}, nil)
	bus := NewBus(nil)
	sink.Attach(bus)

	bus.Publish(NewExtensionRegistered(model.Government))
	bus.Publish(NewDecisionRouted(model.RoleCEO, model.ExecutiveDecision{ID: "x"}, nil))
	sink.Flush()

	if count.Load() != 1 {
		t.Errorf("expected 1 webhook call, got %d", count.Load())
	}
}

func TestNewWebhookSinkEmpty(t *testing.T) {
	if NewWebhookSink(nil, nil) != nil {
		t.Error("expected nil sink for no configs")
	}
}

func TestLoadWebhooks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webhooks.yaml")
	data := `webhooks:
  - url: https://hooks.example.com/a
    format: slack
    events: [decision_routed]
  - url: https://hooks.example.com/b
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	hooks, err := LoadWebhooks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hooks) != 2 {
		t.Fatalf("expected 2 webhooks, got %d", len(hooks))
	}
	if hooks[0].Format != "slack" || len(hooks[0].Events) != 1 || hooks[0].Events[0] != DecisionRouted {
		t.Errorf("unexpected first webhook: %+v", hooks[0])
	}
}

func TestLoadWebhooksMissing(t *testing.T) {
	hooks, err := LoadWebhooks(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hooks != nil {
		t.Errorf("expected nil, got %v", hooks)
	}
}

func TestLoadWebhooksRequiresURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webhooks.yaml")
	os.WriteFile(path, []byte("webhooks:\n  - format: slack\n"), 0600)
	if _, err := LoadWebhooks(path); err == nil {
		t.Error("expected error for missing url")
	}
}
