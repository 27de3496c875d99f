// Package api is the transport layer of the client toolkit. It issues raw
// HTTP calls against the REST API and hands back the server JSON untouched.
package api

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

	"github.com/yigit/schooladmin/internal/pkg/logger"
)

const defaultTimeout = 15 * time.Second

// Config configures a Repository
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Envelope is the server response envelope with data and meta left raw
type Envelope struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta,omitempty"`
}

// HTTPError is returned for every non-2xx response
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Message returns error.message from the server error body, if any
func (e *HTTPError) Message() string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	return body.Error.Message
}

// Repository talks to the REST API
type Repository struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewRepository creates a Repository. A zero timeout uses 15 seconds.
func NewRepository(cfg Config) *Repository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Repository{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (r *Repository) do(ctx context.Context, method, path string, query url.Values, payload any) (*Envelope, error) {
	endpoint := r.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("API request failed")
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: raw}
	}

	env := &Envelope{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return env, nil
}

func (r *Repository) get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return r.do(ctx, http.MethodGet, path, query, nil)
}

func (r *Repository) post(ctx context.Context, path string, payload any) (*Envelope, error) {
	return r.do(ctx, http.MethodPost, path, nil, payload)
}

func (r *Repository) put(ctx context.Context, path string, payload any) (*Envelope, error) {
	return r.do(ctx, http.MethodPut, path, nil, payload)
}

func (r *Repository) delete(ctx context.Context, path string) error {
	_, err := r.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if size > 0 {
		q.Set("size", fmt.Sprint(size))
	}
	return q
}
