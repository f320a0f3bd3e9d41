// Package backend implements the repository interfaces against the frontdesk
// HTTP API, so the CLI runs the same scheduling façade as the server.
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

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/frontdesk/pkg/circuitbreaker"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

type Config struct {
	BaseURL         string
	Token           string
	Timeout         time.Duration
	PatientCacheTTL time.Duration
}

type Client struct {
	base     *url.URL
	token    string
	http     *http.Client
	cb       *circuitbreaker.CircuitBreaker
	patients *cache.Cache
}

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PatientCacheTTL <= 0 {
		cfg.PatientCacheTTL = 5 * time.Minute
	}

	return &Client{
		base:  base,
		token: cfg.Token,
		http:  &http.Client{Timeout: cfg.Timeout},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "frontdesk-api",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     15 * time.Second,
		}),
		patients: cache.New(cfg.PatientCacheTTL, 2*cfg.PatientCacheTTL),
	}, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do sends body as JSON and decodes the envelope's data into out. API errors
// come back as AppErrors of the matching kind.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	return c.cb.Execute(func() error {
		return c.roundTrip(ctx, method, path, query, body, out)
	}, isClientError)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := *c.base
	u.Path = u.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
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

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}

	if resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, method, path, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

func statusError(status int, method, path, message string) error {
	switch status {
	case http.StatusNotFound:
		return &errors.AppError{Code: errors.ErrNotFound, Message: message}
	case http.StatusConflict:
		return errors.NewConflict(message)
	case http.StatusBadRequest:
		return errors.NewValidation(message)
	case http.StatusUnauthorized:
		return errors.Unauthorized(fmt.Errorf("%s", message))
	default:
		return fmt.Errorf("%s %s: status %d: %s", method, path, status, message)
	}
}

// isClientError keeps answers the API gave on purpose from tripping the breaker.
func isClientError(err error) bool {
	switch errors.CodeOf(err) {
	case errors.ErrNotFound, errors.ErrConflict, errors.ErrValidation, errors.ErrUnauthorized:
		return true
	}
	return false
}
