// Package xero talks to the Xero accounting, payroll and identity APIs over HTTPS.
package xero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/middleware"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024

	accountingPath = "/api.xro/2.0/"
	payrollPath    = "/payroll.xro/1.0/"

	serviceName = "xero"
)

// Client is a thin JSON client over the Xero REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewClient creates a client rooted at baseURL, e.g. https://api.xero.com.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody covers both error shapes Xero returns: a top level message and
// per-element validation errors.
type errorBody struct {
	ErrorNumber int    `json:"ErrorNumber"`
	Type        string `json:"Type"`
	Message     string `json:"Message"`
	Elements    []struct {
		ValidationErrors []struct {
			Message string `json:"Message"`
		} `json:"ValidationErrors"`
	} `json:"Elements"`
}

func (e errorBody) message() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Elements) > 0 && len(e.Elements[0].ValidationErrors) > 0 {
		return e.Elements[0].ValidationErrors[0].Message
	}
	return "Unknown error"
}

// do sends a request and decodes a JSON response into out (when out is non-nil).
// A non-2xx status, or a 2xx body carrying an ErrorNumber, becomes an *apperrors.ExternalAPIError.
func (c *Client) do(ctx context.Context, auth domain.XeroAuth, method, path string, query url.Values, body any, out any) error {
	raw, err := c.doRaw(ctx, auth, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("xero: failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, auth domain.XeroAuth, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("xero: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("xero: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	if auth.TenantID != "" {
		req.Header.Set("Xero-Tenant-Id", auth.TenantID)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("xero: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("xero: failed to read response: %w", err)
	}
	logger.Debug("Xero API call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)))

	var eb errorBody
	decodeErr := json.Unmarshal(raw, &eb)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil {
			msg = eb.message()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		logger.Warn("Xero API error", slog.String("path", path), slog.Int("status", resp.StatusCode), slog.String("message", msg))
		return nil, &apperrors.ExternalAPIError{Service: serviceName, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr == nil && eb.ErrorNumber != 0 {
		return nil, &apperrors.ExternalAPIError{Service: serviceName, Status: http.StatusBadRequest, Message: eb.message()}
	}
	return raw, nil
}
