package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *streamRecorder) handle(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *streamRecorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func waitFor(t *testing.T, condition func() bool, message string) {
	t.Helper()
	require.Eventually(t, condition, 2*time.Second, 5*time.Millisecond, message)
}

func newTestStream(t *testing.T, server *httptest.Server, sessions *memSessions, recorder *streamRecorder, opts func(*StreamConfig)) *StreamClient {
	t.Helper()

	cfg := StreamConfig{
		BaseURL:        server.URL,
		Sessions:       sessions,
		Handler:        recorder.handle,
		HTTPClient:     server.Client(),
		ReconnectDelay: 20 * time.Millisecond,
	}
	if opts != nil {
		opts(&cfg)
	}

	stream, err := NewStreamClient(cfg)
	require.NoError(t, err)
	return stream
}

func TestStreamDeliversEventsWithBearerHeader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sse/connect", r.URL.Path)
		assert.Equal(t, "Bearer AT1", r.Header.Get("Authorization"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		fmt.Fprint(w, "event: connect\ndata: connected\n\n")
		flusher.Flush()
		fmt.Fprint(w, "event: notification\ndata: {\"type\":\"FRIEND_REQUEST\"}\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	recorder := &streamRecorder{}
	stream := newTestStream(t, server, newMemSessions("AT1", "RT1"), recorder, nil)

	require.NoError(t, stream.Connect(context.Background()))
	t.Cleanup(stream.Disconnect)

	waitFor(t, func() bool { return len(recorder.snapshot()) >= 2 }, "both events delivered")

	events := recorder.snapshot()
	assert.Equal(t, Event{Type: "connect", Data: "connected"}, events[0])
	assert.Equal(t, Event{Type: "notification", Data: `{"type":"FRIEND_REQUEST"}`}, events[1])
}

func TestStreamQueryAuthCarriesToken(t *testing.T) {
	t.Parallel()

	sawToken := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		select {
		case sawToken <- r.URL.Query().Get("token"):
		default:
		}
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	recorder := &streamRecorder{}
	stream := newTestStream(t, server, newMemSessions("AT1", "RT1"), recorder, func(cfg *StreamConfig) {
		cfg.AuthMode = StreamAuthQuery
	})

	require.NoError(t, stream.Connect(context.Background()))
	t.Cleanup(stream.Disconnect)

	select {
	case token := <-sawToken:
		assert.Equal(t, "AT1", token)
	case <-time.After(2 * time.Second):
		t.Fatal("stream never connected")
	}
}

func TestStreamReconnectsAfterServerClose(t *testing.T) {
	t.Parallel()

	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "event: connect\ndata: attempt %d\n\n", n)
		flusher.Flush()
		// Returning closes the response body, an organic disconnection.
	}))
	t.Cleanup(server.Close)

	recorder := &streamRecorder{}
	stream := newTestStream(t, server, newMemSessions("AT1", "RT1"), recorder, nil)

	require.NoError(t, stream.Connect(context.Background()))
	t.Cleanup(stream.Disconnect)

	waitFor(t, func() bool { return connections.Load() >= 3 }, "stream reconnects after server-side close")
	waitFor(t, func() bool { return len(recorder.snapshot()) >= 3 }, "each attempt delivers its event")
}

func TestConnectIsNoOpWithoutCredential(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("stream must not connect without a stored token")
	}))
	t.Cleanup(server.Close)

	recorder := &streamRecorder{}
	stream := newTestStream(t, server, newMemSessions("", ""), recorder, nil)

	require.NoError(t, stream.Connect(context.Background()))
	time.Sleep(50 * time.Millisecond)
	stream.Disconnect()
}

func TestConnectIsNoOpWhenAlreadyConnected(t *testing.T) {
	t.Parallel()

	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connections.Add(1)
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	recorder := &streamRecorder{}
	stream := newTestStream(t, server, newMemSessions("AT1", "RT1"), recorder, nil)

	require.NoError(t, stream.Connect(context.Background()))
	t.Cleanup(stream.Disconnect)
	require.NoError(t, stream.Connect(context.Background()))
	require.NoError(t, stream.Connect(context.Background()))

	waitFor(t, func() bool { return connections.Load() >= 1 }, "stream connected")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), connections.Load(), "repeated Connect opens no extra connection")
}

func TestDisconnectCancelsPendingReconnect(t *testing.T) {
	t.Parallel()

	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connections.Add(1)
		w.WriteHeader(http.StatusOK)
		// Close immediately so the loop enters its reconnect wait.
	}))
	t.Cleanup(server.Close)

	recorder := &streamRecorder{}
	stream := newTestStream(t, server, newMemSessions("AT1", "RT1"), recorder, func(cfg *StreamConfig) {
		cfg.ReconnectDelay = time.Hour
	})

	require.NoError(t, stream.Connect(context.Background()))
	waitFor(t, func() bool { return connections.Load() == 1 }, "first attempt made")

	finished := make(chan struct{})
	go func() {
		stream.Disconnect()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnect did not cancel the pending reconnect wait")
	}
	assert.Equal(t, int32(1), connections.Load())
}

func TestDisconnectIsIdempotent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	recorder := &streamRecorder{}
	stream := newTestStream(t, server, newMemSessions("AT1", "RT1"), recorder, nil)

	stream.Disconnect() // before any Connect

	require.NoError(t, stream.Connect(context.Background()))
	stream.Disconnect()
	stream.Disconnect()

	// The loop can be restarted after a deliberate disconnect.
	require.NoError(t, stream.Connect(context.Background()))
	stream.Disconnect()
}

func TestStreamStopsWhenSessionTornDownDuringReconnect(t *testing.T) {
	t.Parallel()

	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connections.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	sessions := newMemSessions("AT1", "RT1")
	recorder := &streamRecorder{}
	stream := newTestStream(t, server, sessions, recorder, nil)

	require.NoError(t, stream.Connect(context.Background()))
	t.Cleanup(stream.Disconnect)
	waitFor(t, func() bool { return connections.Load() >= 1 }, "first attempt made")

	require.NoError(t, sessions.Clear(context.Background()))

	attempts := connections.Load()
	time.Sleep(100 * time.Millisecond)
	// One reconnect may already have been in flight when the session was
	// cleared; after that the loop must stop.
	assert.LessOrEqual(t, connections.Load(), attempts+1)
}
