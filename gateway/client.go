package gateway

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

	"github.com/jrsteele09/hisabi-admin/internal/config"
	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/session"
	"github.com/rs/zerolog/log"
)

const maxErrorBody = 1 << 20

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client dispatches JSON requests to the backend through the interceptor chain.
type Client struct {
	baseURL              *url.URL
	http                 httpDoer
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

type Option func(*Client)

// WithHTTPClient replaces the default *http.Client
func WithHTTPClient(doer httpDoer) Option {
	return func(c *Client) { c.http = doer }
}

func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(c *Client) { c.requestInterceptors = append(c.requestInterceptors, i) }
}

func WithResponseInterceptor(i ResponseInterceptor) Option {
	return func(c *Client) { c.responseInterceptors = append(c.responseInterceptors, i) }
}

// New creates a bare client for baseURL (e.g. "http://localhost:4000/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("[gateway New] invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[gateway New] base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewAdmin creates the admin API client: credentials from store are attached
// to every request and a 401 from any endpoint signs the store out and
// navigates to the login screen.
func NewAdmin(cfg config.ClientConfig, store *session.Store, nav Navigator, opts ...Option) (*Client, error) {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.GetRequestTimeout()}),
		WithRequestInterceptor(RequestIDInterceptor()),
		WithRequestInterceptor(BearerInterceptor(store)),
		WithResponseInterceptor(EvictOnUnauthorized(store, nav)),
	}
	return New(cfg.GetAPIURL(), append(base, opts...)...)
}

// Request describes one API call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do sends r and decodes a 2xx JSON body into out (when out is non-nil).
// Non-2xx responses come back as *APIError after the response interceptors ran.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}
	for _, intercept := range c.requestInterceptors {
		if err := intercept(req); err != nil {
			return fmt.Errorf("[Client Do] request interceptor: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", r.Method).Str("path", r.Path).Msg("api request failed")
		return fmt.Errorf("[Client Do] %s %s: %w", r.Method, r.Path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	log.Debug().
		Str("method", r.Method).
		Str("path", r.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	for _, intercept := range c.responseInterceptors {
		intercept(resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(r.Method, r.Path, resp.StatusCode, body)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("[Client Do] read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrapf(apperrors.ErrUnexpectedShape, "[Client Do] %s %s: %v", r.Method, r.Path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	u := c.baseURL.JoinPath(r.Path)
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("[Client Do] encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("[Client Do] new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
