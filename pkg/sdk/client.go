// Package sdk is the authenticated HTTP client for the document/video
// question-answering backend.
package sdk

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Invalidator is told when the server rejects the credential
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Client wraps calls to the question-answering backend. Calls that need a
// credential take it from the token source at request time, so a login or
// logout is visible to the next call without rebuilding the client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      oauth2.TokenSource
	invalidator Invalidator
	logger      *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. The HTTP client is copied so a
// client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the backend at baseURL (e.g.
// "http://localhost:8000/api"). tokens supplies the bearer credential and
// invalidator is notified on a 401; either may be nil for anonymous use.
func NewClient(baseURL string, tokens oauth2.TokenSource, invalidator Invalidator, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		tokens:      tokens,
		invalidator: invalidator,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("sdk")

	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs an authenticated JSON request: in is encoded as the body when
// non-nil, and a 2xx body is decoded into out when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	return c.NewRequest(ctx, method, path, in, out).WithBearer().Do()
}
