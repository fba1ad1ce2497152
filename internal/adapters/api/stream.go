package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bnema/maplog-cli/internal/ports"
)

const (
	streamConnectPath     = "/api/sse/connect"
	defaultReconnectDelay = 3 * time.Second
)

var errStreamClosed = errors.New("stream closed by server")

// StreamAuthMode picks how the push connection presents its credential.
// Header auth is preferred; query auth exists for transports and proxies
// that strip custom headers from long-lived requests, at the cost of the
// token appearing in the URL.
type StreamAuthMode string

const (
	StreamAuthHeader StreamAuthMode = "header"
	StreamAuthQuery  StreamAuthMode = "query"
)

type StreamConfig struct {
	BaseURL  string
	Sessions ports.SessionStore
	// Handler receives every decoded event on the stream goroutine.
	Handler func(ctx context.Context, event Event)
	// HTTPClient must have no Timeout set; the connection is long-lived.
	HTTPClient     *http.Client
	AuthMode       StreamAuthMode
	ReconnectDelay time.Duration
	Logf           func(format string, args ...any)
}

// StreamClient maintains at most one live push connection. Organic
// disconnections reconnect after a fixed delay; Disconnect cancels the
// connection and any pending wait and never triggers a reconnect.
type StreamClient struct {
	baseURL        string
	sessions       ports.SessionStore
	handler        func(ctx context.Context, event Event)
	httpClient     *http.Client
	authMode       StreamAuthMode
	reconnectDelay time.Duration
	logf           func(format string, args ...any)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewStreamClient(cfg StreamConfig) (*StreamClient, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Handler == nil {
		return nil, errors.New("event handler is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	authMode := cfg.AuthMode
	if authMode == "" {
		authMode = StreamAuthHeader
	}

	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}

	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &StreamClient{
		baseURL:        baseURL,
		sessions:       cfg.Sessions,
		handler:        cfg.Handler,
		httpClient:     httpClient,
		authMode:       authMode,
		reconnectDelay: reconnectDelay,
		logf:           logf,
	}, nil
}

// Connect starts the stream loop. It is a no-op when already connected or
// when no access token is stored.
func (s *StreamClient) Connect(ctx context.Context) error {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !session.IsAuthenticated() {
		return nil
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	streamCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(streamCtx, done)
	return nil
}

// Disconnect cancels the in-flight connection and any pending reconnect
// wait. Idempotent.
func (s *StreamClient) Disconnect() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run is the single stream loop: connect, read until failure, wait, retry.
// The loop shape guarantees one transport handle and at most one pending
// reconnect wait, and a canceled context (deliberate disconnect) exits
// without scheduling anything.
func (s *StreamClient) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		if s.done == done {
			s.cancel = nil
			s.done = nil
		}
		s.mu.Unlock()
	}()

	for {
		session, err := s.sessions.Load(ctx)
		if err != nil || !session.IsAuthenticated() {
			// Session was torn down while we were waiting to reconnect.
			return
		}

		err = s.stream(ctx, session.AccessToken)
		if ctx.Err() != nil {
			return
		}
		s.logf("stream disconnected: %v; reconnecting in %s", err, s.reconnectDelay)

		timer := time.NewTimer(s.reconnectDelay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
	}
}

// stream opens one connection and pumps its bytes through a fresh parser
// until the server closes it or the context is canceled.
func (s *StreamClient) stream(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+streamConnectPath, nil)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	switch s.authMode {
	case StreamAuthQuery:
		query := req.URL.Query()
		query.Set("token", token)
		req.URL.RawQuery = query.Encode()
	default:
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: status %d", resp.StatusCode)
	}

	parser := newEventParser()
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, event := range parser.Feed(buf[:n]) {
				s.handler(ctx, event)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errStreamClosed
			}
			return err
		}
	}
}
