// Package notify delivers templated license payloads to the upstream
// connector webhook.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sender delivers one rendered payload to a downstream endpoint.
type Sender interface {
	// Send posts the payload and returns an error on any non-2xx response.
	Send(ctx context.Context, payload string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// ConnectorSender posts plain-text payloads to the connector webhook URL.
type ConnectorSender struct {
	url    string
	client *http.Client
}

// NewConnectorSender creates a ConnectorSender for the given URL with the
// given per-request timeout.
func NewConnectorSender(url string, timeout time.Duration) *ConnectorSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ConnectorSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts the payload as text/plain.
func (c *ConnectorSender) Send(ctx context.Context, payload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("connector: create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("connector: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("connector: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Name identifies the sender in broadcast results and logs.
func (c *ConnectorSender) Name() string {
	return "connector"
}
