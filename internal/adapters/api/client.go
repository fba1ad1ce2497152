// Package api is the authenticated HTTP layer shared by every resource
// service: it attaches the stored bearer token to outgoing requests,
// unwraps the server's {code, message, data} envelope, and coordinates a
// single token renewal across any number of concurrently failing requests.
package api

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
	"sync"
	"time"

	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/bnema/maplog-cli/internal/ports"
)

const (
	refreshPath      = "/api/auth/refresh"
	maxResponseBytes = 1 << 20
)

// Config wires a Client. BaseURL carries only scheme and host; the /api
// prefix lives in the request paths.
type Config struct {
	BaseURL          string
	HTTPClient       *http.Client
	Sessions         ports.SessionStore
	RequestTimeout   time.Duration
	OnSessionExpired func()
}

type Client struct {
	baseURL          string
	httpClient       *http.Client
	sessions         ports.SessionStore
	requestTimeout   time.Duration
	onSessionExpired func()

	// refreshing and waiters implement the single-flight renewal: the first
	// 401 wins the flag and runs the renewal, every later 401 parks on a
	// one-shot channel until the owner settles the whole batch.
	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

func NewClient(cfg Config) (*Client, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	onSessionExpired := cfg.OnSessionExpired
	if onSessionExpired == nil {
		onSessionExpired = func() {}
	}

	return &Client{
		baseURL:          baseURL,
		httpClient:       httpClient,
		sessions:         cfg.Sessions,
		requestTimeout:   requestTimeout,
		onSessionExpired: onSessionExpired,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.JSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.JSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body any, out any) error {
	return c.JSON(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.JSON(ctx, http.MethodDelete, path, query, nil, out)
}

// JSON issues an authenticated request with an optional JSON body and
// decodes the envelope's data field into out.
func (c *Client) JSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	bodyFunc := noBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		bodyFunc = func() (io.Reader, string, error) {
			return bytes.NewReader(encoded), "application/json", nil
		}
	}

	return c.do(ctx, method, path, query, bodyFunc, out, false)
}

// Multipart issues an authenticated multipart/form-data request. The form
// is rebuilt from scratch on a post-renewal replay, so file parts are read
// again rather than replayed from a spent reader.
func (c *Client) Multipart(ctx context.Context, method, path string, form MultipartForm, out any) error {
	return c.do(ctx, method, path, nil, form.bodyFunc(), out, false)
}

func noBody() (io.Reader, string, error) {
	return nil, "", nil
}

// do sends one request and runs the response-intercept protocol: unwrap on
// success, renew-and-replay exactly once on a first 401, propagate anything
// else untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, bodyFunc func() (io.Reader, string, error), out any, retried bool) error {
	status, env, err := c.send(ctx, method, path, query, bodyFunc, true)
	if err != nil {
		return err
	}

	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return decodeData(env.Data, out)
	}

	respErr := &Error{Status: status, Code: env.Code, Message: env.Message}

	if status == http.StatusUnauthorized && !retried {
		if renewErr := c.renewAccessToken(ctx); renewErr != nil {
			// The renewal error is signaled by session teardown; the caller
			// gets its original 401 back.
			return respErr
		}
		return c.do(ctx, method, path, query, bodyFunc, out, true)
	}

	return respErr
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, bodyFunc func() (io.Reader, string, error), authenticated bool) (int, envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	body, contentType, err := bodyFunc()
	if err != nil {
		return 0, envelope{}, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		return 0, envelope{}, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authenticated {
		session, err := c.sessions.Load(ctx)
		if err != nil {
			return 0, envelope{}, fmt.Errorf("load session: %w", err)
		}
		if session.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+session.AccessToken)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, envelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, envelope{}, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	var env envelope
	if len(data) > 0 {
		// Non-envelope bodies (proxies, HTML error pages) still surface as
		// a status-coded Error below, so a decode failure is not fatal.
		_ = json.Unmarshal(data, &env)
	}

	return resp.StatusCode, env, nil
}

// renewAccessToken is the single-flight renewal protocol. The caller that
// finds the flag lowered raises it and owns the renewal; everyone else
// parks until the owner settles the batch. The flag is always lowered
// before the owner returns.
func (c *Client) renewAccessToken(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		wait := make(chan error, 1)
		c.waiters = append(c.waiters, wait)
		c.mu.Unlock()

		select {
		case err := <-wait:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	err := c.refresh(ctx)
	if err != nil {
		// Unrecoverable: wipe tokens and identity together and send the
		// user back to login before anyone is unparked.
		clearCtx := context.WithoutCancel(ctx)
		if clearErr := c.sessions.Clear(clearCtx); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
		c.onSessionExpired()
	}

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	// Settle the whole batch in enqueue order.
	for _, wait := range waiters {
		wait <- err
	}

	return err
}

type refreshPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refresh performs the bare renewal call. It deliberately bypasses the
// response-intercept path and, once started, runs to completion even if
// the triggering caller has already given up.
func (c *Client) refresh(ctx context.Context) error {
	renewCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.requestTimeout)
	defer cancel()

	session, err := c.sessions.Load(renewCtx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session.RefreshToken == "" {
		return domain.ErrRenewalFailed
	}

	body, err := json.Marshal(map[string]string{"refreshToken": session.RefreshToken})
	if err != nil {
		return fmt.Errorf("encode refresh request: %w", err)
	}

	status, env, err := c.send(renewCtx, http.MethodPost, refreshPath, nil, func() (io.Reader, string, error) {
		return bytes.NewReader(body), "application/json", nil
	}, false)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRenewalFailed, err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", domain.ErrRenewalFailed, status)
	}

	var payload refreshPayload
	if err := decodeData(env.Data, &payload); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRefreshResponse, err)
	}
	if payload.AccessToken == "" {
		return domain.ErrInvalidRefreshResponse
	}

	if err := c.sessions.SetTokens(renewCtx, payload.AccessToken, payload.RefreshToken); err != nil {
		return fmt.Errorf("store renewed tokens: %w", err)
	}

	return nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(data json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func normalizeBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	return strings.TrimRight(parsed.String(), "/"), nil
}
