package event

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	requestTimeout = 5 * time.Second
	maxRetries     = 3
)

var httpClient = &http.Client{Timeout: requestTimeout}

// WebhookConfig defines one webhook destination.
type WebhookConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack"
	Events  []Type            `yaml:"events"  json:"events"` // empty = all events
	Headers map[string]string `yaml:"headers" json:"headers"`
}

type webhookFile struct {
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// LoadWebhooks reads webhook destinations from YAML. Empty path falls back
// to ~/.headelf/webhooks.yaml; a missing file yields no webhooks.
func LoadWebhooks(path string) ([]WebhookConfig, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		path = filepath.Join(home, ".headelf", "webhooks.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read webhook config: %w", err)
	}

	var f webhookFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse webhook config: %w", err)
	}
	for i, w := range f.Webhooks {
		if w.URL == "" {
			return nil, fmt.Errorf("webhooks[%d]: url is required", i)
		}
	}
	return f.Webhooks, nil
}

// WebhookSink posts matching events to webhook endpoints. Sends run in the
// background; Flush waits for them.
type WebhookSink struct {
	configs []WebhookConfig
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewWebhookSink returns nil when there is nothing to send to.
func NewWebhookSink(configs []WebhookConfig, logger *zap.Logger) *WebhookSink {
	if len(configs) == 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookSink{configs: configs, logger: logger}
}

// Attach subscribes the sink to bus.
func (s *WebhookSink) Attach(bus *Bus) func() {
	return bus.Subscribe(s.Handle)
}

// Handle sends e to every webhook whose Events list matches.
func (s *WebhookSink) Handle(e Event) {
	for _, cfg := range s.configs {
		if !matches(cfg.Events, e.Type) {
			continue
		}
		s.wg.Add(1)
		go func(cfg WebhookConfig) {
			defer s.wg.Done()
			if err := Send(cfg, e); err != nil {
				s.logger.Warn("webhook delivery failed",
					zap.String("url", cfg.URL),
					zap.String("type", string(e.Type)),
					zap.Error(err))
			}
		}(cfg)
	}
}

// Flush blocks until in-flight sends finish.
func (s *WebhookSink) Flush() {
	s.wg.Wait()
}

func matches(events []Type, t Type) bool {
	if len(events) == 0 {
		return true
	}
	for _, e := range events {
		if e == t {
			return true
		}
	}
	return false
}

// Send posts an event to a webhook endpoint with retry on 5xx.
func Send(cfg WebhookConfig, e Event) error {
	body, err := FormatPayload(cfg.Format, e)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * retryBackoff)
		}

		req, err := http.NewRequest(http.MethodPost, cfg.URL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range cfg.Headers {
			req.Header.Set(k, v)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("webhook rejected: HTTP %d", resp.StatusCode)
		}
		lastErr = fmt.Errorf("webhook server error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook failed after %d attempts: %w", maxRetries, lastErr)
}

// retryBackoff is the base delay between attempts; tests shorten it.
var retryBackoff = time.Second
