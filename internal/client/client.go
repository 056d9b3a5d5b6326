package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListLicenses(ctx context.Context) ([]dto.LicenseResponse, error) {
	var out []dto.LicenseResponse
	if err := c.do(ctx, http.MethodGet, "/licenses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLicense issues a key for host. expires is epoch milliseconds; zero
// leaves the expiry to the server default.
func (c *Client) CreateLicense(ctx context.Context, host string, expires int64) (dto.LicenseResponse, error) {
	var out dto.LicenseResponse
	req := dto.LicenseCreationRequest{Host: host, Expires: float64(expires)}
	if err := c.do(ctx, http.MethodPost, "/licenses", req, &out); err != nil {
		return dto.LicenseResponse{}, err
	}
	return out, nil
}

func (c *Client) DeleteLicense(ctx context.Context, key string) error {
	var out dto.LicenseDeletionResponse
	return c.do(ctx, http.MethodDelete, "/licenses/"+url.PathEscape(key), nil, &out)
}

// ValidateLicense reports whether key is valid for host along with the
// server's message. A rejected license is not an error.
func (c *Client) ValidateLicense(ctx context.Context, key, host string) (bool, string, error) {
	q := url.Values{}
	q.Set("license", key)
	q.Set("host", host)

	var out dto.LicenseValidationResponse
	err := c.do(ctx, http.MethodGet, "/validate?"+q.Encode(), nil, &out)
	if err == nil {
		return true, out.Status, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		return false, apiErr.Message, nil
	}
	return false, "", err
}

func (c *Client) Login(ctx context.Context, password string) (dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Password: password}, &out); err != nil {
		return dto.LoginResponse{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError understands both the {"error": ...} bodies and RFC 7807
// problem documents.
func decodeError(status int, data []byte) error {
	var payload struct {
		Error string `json:"error"`
		Title string `json:"title"`
	}
	_ = json.Unmarshal(data, &payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Title
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
