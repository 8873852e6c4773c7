package ntfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// defaultTimeout bounds notification requests when config leaves it unset.
const defaultTimeout = 10 * time.Second

// Client publishes notifications to an ntfy server.
//
// Delivery is best-effort: automation code treats a failed notification
// as a logged non-event, never as a reason to change state.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	httpClient *http.Client
	url        string
	topic      string
}

// payload is the ntfy publish body: the topic rides inside the JSON
// document alongside the notification fields.
type payload struct {
	Topic string `json:"topic"`
	Notification
}

// NewClient creates an ntfy client from configuration.
//
// Parameters:
//   - cfg: Ntfy configuration from config.yaml
//
// Returns:
//   - *Client: Client ready for use
//   - error: If the configuration is unusable
func NewClient(cfg config.NtfyConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNoServer
	}
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}

	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.URL,
		topic:      cfg.Topic,
	}, nil
}

// Send publishes a notification.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - n: Notification to publish
//
// Returns:
//   - error: nil on 2xx, otherwise a wrapped delivery error
func (c *Client) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(payload{Topic: c.topic, Notification: n})
	if err != nil {
		return fmt.Errorf("%w: encoding notification: %w", ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: server returned %s", ErrSendFailed, resp.Status)
	}

	return nil
}
