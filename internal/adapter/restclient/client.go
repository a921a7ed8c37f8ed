// Package restclient provides the Content Store client for the Folio REST API.
// It carries no business logic: requests are typed, responses decoded and
// status codes mapped back onto the domain sentinel errors.
package restclient

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

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/logger"
)

const apiPrefix = "/api/v1"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client talks to the sections endpoints of a Folio server. It implements
// contentstore.Store.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL. token, when set, is
// sent as a bearer token on every request.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// APIError is a non-2xx response from the server. It unwraps to the domain
// sentinel matching the status code, if any.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("folio API error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusForbidden:
		return domain.ErrReadOnly
	default:
		return nil
	}
}

// GetSection fetches one section.
func (c *Client) GetSection(ctx context.Context, pageKey, sectionKey string) (*content.Section, error) {
	var sec content.Section
	if err := c.do(ctx, http.MethodGet, sectionPath(pageKey, sectionKey), nil, &sec); err != nil {
		return nil, fmt.Errorf("get section %s/%s: %w", pageKey, sectionKey, err)
	}
	return &sec, nil
}

// ListSections fetches the sections of a page, or all sections when pageKey is empty.
func (c *Client) ListSections(ctx context.Context, pageKey string) ([]content.Section, error) {
	path := "/sections"
	if pageKey != "" {
		path += "?page_key=" + url.QueryEscape(pageKey)
	}
	var sections []content.Section
	if err := c.do(ctx, http.MethodGet, path, nil, &sections); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// CreateSection posts a new section.
func (c *Client) CreateSection(ctx context.Context, req *content.CreateRequest) (*content.Section, error) {
	var sec content.Section
	if err := c.do(ctx, http.MethodPost, "/sections", req, &sec); err != nil {
		return nil, fmt.Errorf("create section %s/%s: %w", req.PageKey, req.SectionKey, err)
	}
	return &sec, nil
}

// UpdateSection puts a partial update. req.Content, when set, is sent whole.
func (c *Client) UpdateSection(ctx context.Context, pageKey, sectionKey string, req *content.UpdateRequest) (*content.Section, error) {
	var sec content.Section
	if err := c.do(ctx, http.MethodPut, sectionPath(pageKey, sectionKey), req, &sec); err != nil {
		return nil, fmt.Errorf("update section %s/%s: %w", pageKey, sectionKey, err)
	}
	return &sec, nil
}

// DeleteSection removes a section.
func (c *Client) DeleteSection(ctx context.Context, pageKey, sectionKey string) error {
	if err := c.do(ctx, http.MethodDelete, sectionPath(pageKey, sectionKey), nil, nil); err != nil {
		return fmt.Errorf("delete section %s/%s: %w", pageKey, sectionKey, err)
	}
	return nil
}

// Health reports whether the server answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

func sectionPath(pageKey, sectionKey string) string {
	return "/sections/" + url.PathEscape(pageKey) + "/" + url.PathEscape(sectionKey)
}

// do sends one request. There is no retry: failures surface to the caller.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := content.Decode(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the {"error": "..."} message, falling back to the
// raw body or the status text.
func errorMessage(data []byte, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}

