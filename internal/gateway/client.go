package gateway

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// DefaultAwaitTimeout bounds the await phase when the config does not
// override it.
const DefaultAwaitTimeout = 60 * time.Second

// defaultSubmitTimeout bounds the single blocking submit request.
const defaultSubmitTimeout = 30 * time.Second

// Config holds the connection settings for a gateway client.
type Config struct {
	// BaseURL is the gateway's HTTP address, e.g. "http://127.0.0.1:8189".
	BaseURL string

	// AwaitTimeout is the wall-clock budget for the await phase. Zero means
	// DefaultAwaitTimeout.
	AwaitTimeout time.Duration

	// SubmitTimeout bounds the submit request. Zero means a 30s default.
	SubmitTimeout time.Duration
}

// Client talks to one gateway. It holds no per-job state, so a single
// Client is safe to share across concurrently processed jobs.
type Client struct {
	http         *resty.Client
	baseURL      *url.URL
	dialer       *websocket.Dialer
	awaitTimeout time.Duration
}

// NewClient validates the config and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base URL %q: %w", cfg.BaseURL, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("gateway base URL must be absolute with a host, got %q", cfg.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("gateway base URL scheme must be http or https, got %q", cfg.BaseURL)
	}

	awaitTimeout := cfg.AwaitTimeout
	if awaitTimeout <= 0 {
		awaitTimeout = DefaultAwaitTimeout
	}
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}

	httpClient := resty.New().
		SetBaseURL(parsed.String()).
		SetTimeout(submitTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	httpClient.JSONMarshal = json.Marshal
	httpClient.JSONUnmarshal = json.Unmarshal

	return &Client{
		http:         httpClient,
		baseURL:      parsed,
		dialer:       websocket.DefaultDialer,
		awaitTimeout: awaitTimeout,
	}, nil
}

// AwaitTimeout returns the configured await budget.
func (c *Client) AwaitTimeout() time.Duration {
	return c.awaitTimeout
}

// notificationURL builds the websocket address for one job's push channel.
func (c *Client) notificationURL(jobID string) string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	return u.JoinPath("ws", jobID).String()
}
