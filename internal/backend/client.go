package backend

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

	"gtrac-gateway/internal/model"
)

const maxResponseBytes = 32 << 20

const (
	LoginPath          = "/auth/login/"
	RefreshPath        = "/auth/refresh/"
	CurrentUserPath    = "/auth/me/"
	ForgotPasswordPath = "/auth/forgot-password/"
	ResetPasswordPath  = "/auth/reset-password/"
)

// Observer receives one call per completed backend round trip. Status is 0
// when the request never produced a response.
type Observer interface {
	ObserveBackendCall(method string, status int, duration time.Duration)
}

type Client struct {
	baseURL    string
	apiPrefix  string
	httpClient *http.Client
	observer   Observer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New builds the client for the Django API. baseURL must be absolute.
func New(baseURL string, apiPrefix string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend base URL %q is not absolute", baseURL)
	}

	apiPrefix = strings.Trim(strings.TrimSpace(apiPrefix), "/")
	if apiPrefix != "" {
		apiPrefix = "/" + apiPrefix
	}

	c := &Client{
		baseURL:    baseURL,
		apiPrefix:  apiPrefix,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BuildURL joins the base URL, API prefix and path. Backend routes always end
// with a slash.
func (c *Client) BuildURL(path string, query url.Values) string {
	target := c.baseURL + c.apiPrefix + "/" + strings.TrimLeft(path, "/")
	if !strings.HasSuffix(target, "/") {
		target += "/"
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string
	Token       string
	NoCache     bool
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do performs one round trip. A non-2xx status is not an error here; only
// transport and read failures are, wrapped in model.ErrBackendUnavailable.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.BuildURL(req.Path, req.Query), req.Body)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.NoCache {
		httpReq.Header.Set("Cache-Control", "no-cache")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(method, 0, time.Since(started))
		return nil, fmt.Errorf("%w: %s %s: %w", model.ErrBackendUnavailable, method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.observe(method, resp.StatusCode, time.Since(started))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", model.ErrBackendUnavailable, method, req.Path, err)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// DoJSON performs the request and decodes a 2xx body into out. Non-2xx
// responses come back as *ResponseError. A nil out skips decoding.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return &ResponseError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	if out == nil {
		return nil
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return fmt.Errorf("%w: empty body from %s", model.ErrContractViolation, req.Path)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", model.ErrContractViolation, req.Path, err)
	}

	return nil
}

// PostJSON sends in as a JSON body and decodes the reply into out.
func (c *Client) PostJSON(ctx context.Context, path string, token string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request for %s: %w", path, err)
	}

	return c.DoJSON(ctx, Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
		Token:       token,
	}, out)
}

// GetJSON issues a cache-disabled authenticated GET.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, token string, out any) error {
	return c.DoJSON(ctx, Request{
		Method:  http.MethodGet,
		Path:    path,
		Query:   query,
		Token:   token,
		NoCache: true,
	}, out)
}

func (c *Client) observe(method string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendCall(method, status, d)
	}
}
