// Package upstream is the thin HTTP layer shared by the ERP and catalog
// clients: base URL joining, bounded timeouts, JSON bodies and size limits.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"mes-planner/internal/apperror"
	"mes-planner/internal/config"
)

const (
	maxBodyBytes  = 32 << 20
	maxErrorBytes = 4 << 10
	userAgent     = "mes-planner/1.0"
)

type Client struct {
	Service string
	BaseURL string
	HTTP    *http.Client
}

func New(service string, cfg config.UpstreamConfig) *Client {
	return &Client{
		Service: service,
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		HTTP: &http.Client{
			Timeout: cfg.Timeout.Duration,
		},
	}
}

// Response is a fully-read upstream reply.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Snippet returns a bounded body excerpt for error messages.
func (r *Response) Snippet() string {
	b := r.Body
	if len(b) > maxErrorBytes {
		b = b[:maxErrorBytes]
	}
	return strings.TrimSpace(string(b))
}

// Do sends one request. Transport failures (timeouts, refused connections,
// truncated bodies) come back as UpstreamUnavailableError; any HTTP status
// is returned to the caller to interpret.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s istek gövdesi oluşturulamadı: %w", c.Service, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, apperror.Unavailable(c.Service, fmt.Errorf("HTTP isteği oluşturulamadı: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperror.Unavailable(c.Service, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperror.Unavailable(c.Service, fmt.Errorf("%s %s cevabı okunamadı: %w", method, path, err))
	}

	if elapsed := time.Since(start); elapsed > c.HTTP.Timeout/2 && c.HTTP.Timeout > 0 {
		// yavaş upstream, timeout'a yaklaşıyor
		log.Printf("[WARN] %s %s %s yavaş cevap verdi: %s", c.Service, method, path, elapsed)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// GetJSON reads a collection endpoint. Every failure, including a
// non-success status or an undecodable body, is UpstreamUnavailableError:
// read paths have no partial fallback.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return apperror.Unavailable(c.Service, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, resp.Snippet()))
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return apperror.Unavailable(c.Service, fmt.Errorf("GET %s: geçersiz JSON: %w", path, err))
	}
	return nil
}
