package alerts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"task-planner/internal/config"
)

const userAgent = "task-planner/0.1.0"

// Pusher is the system-level push capability. Probe stands in for a
// permission request: a non-nil error means pushes are not deliverable.
type Pusher interface {
	Enabled() bool
	Probe(ctx context.Context) error
	Notify(ctx context.Context, title, body, tag string) error
}

// NewPusher builds a push channel backed by an ntfy-compatible endpoint.
// When no endpoint is configured, a noop implementation is returned.
func NewPusher(cfg config.AlertsConfig) Pusher {
	endpoint := strings.TrimSpace(cfg.PushEndpoint)
	if endpoint == "" {
		return noopPusher{}
	}

	timeout := cfg.PushTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyPusher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type ntfyPusher struct {
	endpoint string
	client   *http.Client
}

func (p *ntfyPusher) Enabled() bool {
	return true
}

// Probe checks the endpoint is reachable before pushes are relied on
func (p *ntfyPusher) Probe(ctx context.Context) error {
	return p.Notify(ctx, "task-planner", "push notifications enabled", "probe")
}

func (p *ntfyPusher) Notify(ctx context.Context, title, body, tag string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Title", title)
	if tag != "" {
		req.Header.Set("Tags", tag)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

type noopPusher struct{}

func (noopPusher) Enabled() bool { return false }

func (noopPusher) Probe(context.Context) error { return nil }

func (noopPusher) Notify(context.Context, string, string, string) error { return nil }
