package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/platinummonkey/warden/pkg/auth"
	"github.com/platinummonkey/warden/pkg/config"
)

// DefaultTimeout bounds a single Directory request
const DefaultTimeout = 15 * time.Second

// Client talks to the Directory REST API
type Client struct {
	baseURL string
	timeout time.Duration
	base    http.RoundTripper
	tokens  oauth2.TokenSource

	plain  *http.Client
	authed *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithTokenSource sets the bearer credentials for catalog calls
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// NewClient creates a client for the Directory at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = config.DefaultAPIURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}

	traced := otelhttp.NewTransport(c.base,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "directory " + r.Method + " " + r.URL.Path
		}),
	)
	c.plain = &http.Client{Transport: traced, Timeout: c.timeout}
	if c.tokens != nil {
		c.authed = &http.Client{
			Transport: &oauth2.Transport{Source: c.tokens, Base: traced},
			Timeout:   c.timeout,
		}
	}
	return c
}

// NewClientFromConfig creates a client from the Directory settings
func NewClientFromConfig(cfg config.DirectoryConfig, ts oauth2.TokenSource) *Client {
	return NewClient(cfg.APIURL, WithTimeout(cfg.Timeout), WithTokenSource(ts))
}

// BaseURL returns the Directory base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a token pair and the user profile
func (c *Client) Login(ctx context.Context, username, password string) (*auth.LoginResponse, error) {
	var resp auth.LoginResponse
	req := auth.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, c.plain, http.MethodPost, "/login/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout blacklists the refresh token
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, c.plain, http.MethodPost, "/logout/", nil, auth.RefreshRequest{Refresh: refreshToken}, nil)
}

// Refresh exchanges a refresh token for a new access token
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*auth.RefreshResponse, error) {
	var resp auth.RefreshResponse
	if err := c.do(ctx, c.plain, http.MethodPost, "/token/refresh/", nil, auth.RefreshRequest{Refresh: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser fetches the profile that owns accessToken
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*auth.User, error) {
	hc := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   c.plain.Transport,
		},
		Timeout: c.timeout,
	}

	var user auth.User
	if err := c.do(ctx, hc, http.MethodGet, "/user/", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Ping checks that the Directory answers HTTP at all. Any status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.plain.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// catalog performs an authenticated call
func (c *Client) catalog(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.authed == nil {
		return ErrNoCredentials
	}
	if _, err := c.tokens.Token(); err != nil {
		return fmt.Errorf("directory credentials: %w", err)
	}
	return c.do(ctx, c.authed, method, path, query, body, out)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
