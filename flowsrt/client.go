package flowsrt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// APIKeyHeader carries the API key on every request.
const APIKeyHeader = "apiKey"

// BreakerSettings controls the circuit breaker wrapped around Fetch.
type BreakerSettings struct {
	Name                   string
	MaxConsecutiveFailures uint32
	OpenTimeout            time.Duration
}

// DefaultBreakerSettings trips after five consecutive failures and probes
// again after thirty seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:                   "flows-realtime",
		MaxConsecutiveFailures: 5,
		OpenTimeout:            30 * time.Second,
	}
}

// Client fetches raw feed payloads over HTTPS. It does not retry; a
// failed request is reported to the caller as a *TransportError.
type Client struct {
	httpClient *http.Client
	apiKey     string
	userAgent  string
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger used for breaker state changes.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(s BreakerSettings) ClientOption {
	return func(c *Client) { c.breaker = c.newBreaker(s) }
}

// NewClient creates a client that authenticates with apiKey. A zero timeout
// leaves requests bounded only by the caller's context.
func NewClient(apiKey string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = c.newBreaker(DefaultBreakerSettings())
	}
	return c
}

func (c *Client) newBreaker(s BreakerSettings) *gobreaker.CircuitBreaker[[]byte] {
	maxFailures := s.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = DefaultBreakerSettings().MaxConsecutiveFailures
	}
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if c.logger != nil {
				c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			}
		},
	})
}

// Fetch retrieves one payload from url.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, &TransportError{URL: url, Err: errors.New("empty endpoint url")}
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, &TransportError{URL: url, Err: err}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// Endpoint binds the client to a single URL.
func (c *Client) Endpoint(url string) *Endpoint {
	return &Endpoint{client: c, url: url}
}

// Endpoint is a Client bound to one feed URL.
type Endpoint struct {
	client *Client
	url    string
}

// URL returns the bound feed URL.
func (e *Endpoint) URL() string { return e.url }

// Fetch retrieves one payload from the bound URL.
func (e *Endpoint) Fetch(ctx context.Context) ([]byte, error) {
	return e.client.Fetch(ctx, e.url)
}
