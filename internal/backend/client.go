// Package backend is the HTTP client for the remote Plus Vans API. The backend
// owns authentication, user profiles, its own health endpoint, and the pricing
// and quote-number stored procedures. Everything here is a thin transport:
// failures are mapped to apperror values so handlers can relay them directly.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/plusvans/admin/internal/apperror"
)

// maxBodyBytes bounds how much of any backend response is read.
const maxBodyBytes = 1 << 20

// Client talks to the backend API rooted at baseURL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. An empty baseURL yields a client whose
// calls all fail with 503 "API URL is not configured".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a backend URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

var errNotConfigured = apperror.NewUnavailable("API URL is not configured", nil)

// do sends req and reads the (bounded) body. Transport failures become 503.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, apperror.NewUnavailable("Backend service is unreachable",
			fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, apperror.NewUnavailable("Backend service is unreachable",
			fmt.Errorf("reading %s response: %w", req.URL.Path, err))
	}
	return resp.StatusCode, body, nil
}

// newRequest builds a request against the backend, attaching the bearer
// token when one is given.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, token string) (*http.Request, error) {
	if !c.Configured() {
		return nil, errNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("building backend request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// postForm sends an application/x-www-form-urlencoded POST.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) (int, []byte, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "")
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// detailMessage extracts a human-readable error from a backend error body.
// The backend reports errors as {"detail": ...} where detail is a string, an
// object with "message", or a list of validation errors with "msg".
func detailMessage(body []byte, fallback string) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil && s != "" {
		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Detail, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return fallback
}
