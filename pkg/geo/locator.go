package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-blockform/internal/loader"
)

// DefaultLocatorURL is the IP geolocation endpoint.
const DefaultLocatorURL = "https://ipapi.co/json/"

// Locator resolves the respondent's country code.
type Locator interface {
	CountryCode(ctx context.Context) (string, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (string, error)

// CountryCode implements Locator.
func (f LocatorFunc) CountryCode(ctx context.Context) (string, error) {
	return f(ctx)
}

// IPLocatorOption configures an IPLocator.
type IPLocatorOption func(*ipLocatorConfig)

type ipLocatorConfig struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

// WithEndpoint overrides DefaultLocatorURL.
func WithEndpoint(url string) IPLocatorOption {
	return func(c *ipLocatorConfig) {
		if strings.TrimSpace(url) != "" {
			c.endpoint = url
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) IPLocatorOption {
	return func(c *ipLocatorConfig) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout bounds the lookup.
func WithTimeout(timeout time.Duration) IPLocatorOption {
	return func(c *ipLocatorConfig) {
		c.timeout = timeout
	}
}

// IPLocator queries an ipapi.co compatible endpoint.
type IPLocator struct {
	endpoint string
	loader   *loader.Loader
}

// NewIPLocator constructs an IPLocator.
func NewIPLocator(options ...IPLocatorOption) *IPLocator {
	cfg := ipLocatorConfig{endpoint: DefaultLocatorURL, timeout: 5 * time.Second}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &IPLocator{
		endpoint: cfg.endpoint,
		loader:   loader.New(loader.Options{HTTPClient: cfg.client, RequestTimeout: cfg.timeout}),
	}
}

// CountryCode returns the normalized ISO code reported by the endpoint, or
// "" when it reports none.
func (l *IPLocator) CountryCode(ctx context.Context) (string, error) {
	resp, err := l.loader.Get(ctx, l.endpoint, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return "", fmt.Errorf("geo: locate: %w", err)
	}
	var payload struct {
		Country string `json:"country"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", fmt.Errorf("geo: decode locate response: %w", err)
	}
	if payload.Country == "" {
		return "", nil
	}
	return NormalizeCode(payload.Country), nil
}
