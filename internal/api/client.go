package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quocvuong92/pve-cli/internal/auth"
	"github.com/quocvuong92/pve-cli/internal/config"
	"github.com/quocvuong92/pve-cli/internal/constants"
	"github.com/quocvuong92/pve-cli/internal/logging"
)

// Request is a single API call
type Request struct {
	Method       string // GET, PUT, POST, DELETE
	Path         string // /nodes/pve1/qemu
	Params       map[string]string
	ResponseType ResponseType
}

// Transport defines the operations the shell needs from the server.
// *Client implements it; tests use in-memory fakes.
type Transport interface {
	// Execute performs one request and returns the decoded result. HTTP
	// failure statuses are not errors, they are reported through the Result.
	Execute(ctx context.Context, req Request) (*Result, error)

	// WaitForTask polls a task until it stops running or timeout elapses
	WaitForTask(ctx context.Context, node, upid string, poll, timeout time.Duration) (*TaskOutcome, error)
}

var _ Transport = (*Client)(nil)

// Client is the Proxmox VE API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      *auth.APIToken
}

// NewClient creates a client for the host in cfg. token may be nil for
// endpoints that need no authentication, such as the schema document.
func NewClient(cfg *config.Config, token *auth.APIToken) *Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // self-signed PVE certificates
	}

	var transport http.RoundTripper = base
	if cfg.Debug {
		transport = logging.NewLoggingRoundTripper(base, logging.NewHTTPLogger(logging.DefaultLogger), true)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   constants.DefaultAPITimeout,
			Transport: transport,
		},
		baseURL: cfg.BaseURL(),
		token:   token,
	}
}

// newClientWithHTTP is used by tests to point the client at an httptest server
func newClientWithHTTP(baseURL string, token *auth.APIToken, hc *http.Client) *Client {
	return &Client{httpClient: hc, baseURL: strings.TrimSuffix(baseURL, "/"), token: token}
}

// BaseURL returns https://host:port
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get reads a resource
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (*Result, error) {
	return c.Execute(ctx, Request{Method: http.MethodGet, Path: path, Params: params})
}

// Set updates a resource
func (c *Client) Set(ctx context.Context, path string, params map[string]string) (*Result, error) {
	return c.Execute(ctx, Request{Method: http.MethodPut, Path: path, Params: params})
}

// Create creates a resource
func (c *Client) Create(ctx context.Context, path string, params map[string]string) (*Result, error) {
	return c.Execute(ctx, Request{Method: http.MethodPost, Path: path, Params: params})
}

// Delete removes a resource
func (c *Client) Delete(ctx context.Context, path string, params map[string]string) (*Result, error) {
	return c.Execute(ctx, Request{Method: http.MethodDelete, Path: path, Params: params})
}

// Execute performs the request. GET requests are retried on gateway errors.
func (c *Client) Execute(ctx context.Context, req Request) (*Result, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	if req.Method != http.MethodGet {
		return c.do(ctx, req)
	}

	result, err := WithRetry(ctx, func() (*Result, error) {
		r, err := c.do(ctx, req)
		if err != nil {
			return nil, err
		}
		if ShouldRetryAPICall(r.StatusCode) {
			return nil, &APIError{StatusCode: r.StatusCode, Message: r.ReasonPhrase, Result: r}
		}
		return r, nil
	})
	if err != nil {
		// A gateway error that outlived the retries is still a server answer
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Result != nil {
			return apiErr.Result, nil
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, req Request) (*Result, error) {
	u := c.baseURL + req.ResponseType.pathPrefix() + escapePath(req.Path)

	form := url.Values{}
	for k, v := range req.Params {
		form.Set(k, v)
	}

	var body io.Reader
	switch req.Method {
	case http.MethodGet, http.MethodDelete:
		if len(form) > 0 {
			u += "?" + form.Encode()
		}
	default:
		body = strings.NewReader(form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.token != nil {
		httpReq.Header.Set("Authorization", c.token.Header())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	result := &Result{
		StatusCode:   resp.StatusCode,
		ReasonPhrase: reasonPhrase(resp),
		ResponseType: req.ResponseType,
		Raw:          raw,
	}
	decodeResult(result)
	return result, nil
}

// reasonPhrase keeps the server's own phrase, PVE puts the failure cause there
func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}

// escapePath escapes each segment of a resource path
func escapePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// Version returns the API version string from GET /version
func (c *Client) Version(ctx context.Context) (string, error) {
	r, err := c.Get(ctx, "/version", nil)
	if err != nil {
		return "", err
	}
	if !r.IsSuccessStatusCode() {
		return "", NewRemoteError(r, false)
	}
	data, ok := r.Data().(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected /version response")
	}
	version, _ := data["version"].(string)
	if version == "" {
		return "", fmt.Errorf("unexpected /version response")
	}
	return version, nil
}
