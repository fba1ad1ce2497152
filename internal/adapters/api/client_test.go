package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSessions is an in-memory SessionStore for coordinator tests.
type memSessions struct {
	mu      sync.Mutex
	session domain.Session
}

func newMemSessions(accessToken, refreshToken string) *memSessions {
	return &memSessions{session: domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}}
}

func (m *memSessions) Load(_ context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *memSessions) SetTokens(_ context.Context, accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.AccessToken = accessToken
	if refreshToken != "" {
		m.session.RefreshToken = refreshToken
	}
	return nil
}

func (m *memSessions) SetUser(_ context.Context, user domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.AccessToken == "" {
		return domain.ErrNotAuthenticated
	}
	m.session.User = &user
	return nil
}

func (m *memSessions) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = domain.Session{}
	return nil
}

func newTestClient(t *testing.T, server *httptest.Server, sessions *memSessions, onExpired func()) *Client {
	t.Helper()

	client, err := NewClient(Config{
		BaseURL:          server.URL,
		HTTPClient:       server.Client(),
		Sessions:         sessions,
		OnSessionExpired: onExpired,
	})
	require.NoError(t, err)
	return client
}

func writeEnvelope(w http.ResponseWriter, status int, code, message, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == "" {
		data = "null"
	}
	fmt.Fprintf(w, `{"code":%q,"message":%q,"data":%s}`, code, message, data)
}

func TestJSONAttachesBearerAndUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer AT1", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/users/me", r.URL.Path)
		writeEnvelope(w, http.StatusOK, "SUCCESS", "", `{"id":7,"nickname":"n"}`)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server, newMemSessions("AT1", "RT1"), nil)

	var user domain.Identity
	require.NoError(t, client.Get(context.Background(), "/api/users/me", nil, &user))
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "n", user.Nickname)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "SUCCESS", "", "null")
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server, newMemSessions("", ""), nil)
	require.NoError(t, client.Get(context.Background(), "/api/users/check-nickname", nil, nil))
}

func TestErrorEnvelopeSurfacesCodeAndMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, "DIARY_NOT_FOUND", "no such diary", "null")
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server, newMemSessions("AT1", "RT1"), nil)

	err := client.Get(context.Background(), "/api/diaries/99", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "DIARY_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "no such diary", apiErr.Message)
	assert.False(t, errors.Is(err, domain.ErrAuthExpired))
}

func TestSingleFlightRenewalUnderConcurrent401s(t *testing.T) {
	t.Parallel()

	const concurrent = 8

	var refreshCalls atomic.Int32
	var unauthorized atomic.Int32
	var replayed atomic.Int32
	releaseRefresh := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer AT2" {
			replayed.Add(1)
			writeEnvelope(w, http.StatusOK, "SUCCESS", "", `{"ok":true}`)
			return
		}
		// Hold the renewal until every request has received its 401, so
		// all of them are in flight when the single renewal settles.
		if unauthorized.Add(1) == concurrent {
			close(releaseRefresh)
		}
		writeEnvelope(w, http.StatusUnauthorized, "AUTH_EXPIRED", "token expired", "null")
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		<-releaseRefresh
		// Give the last 401'd request time to park on the in-flight renewal.
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "SUCCESS", "", `{"accessToken":"AT2","refreshToken":"RT2"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	sessions := newMemSessions("AT1", "RT1")
	client := newTestClient(t, server, sessions, nil)

	var wg sync.WaitGroup
	errs := make([]error, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), "/api/things", nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int32(1), refreshCalls.Load(), "exactly one renewal request")
	assert.Equal(t, int32(concurrent), replayed.Load(), "every request replayed with the new token")

	session, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AT2", session.AccessToken)
	assert.Equal(t, "RT2", session.RefreshToken)
}

func TestSecond401PropagatesWithoutAnotherRenewal(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "AUTH_EXPIRED", "token expired", "null")
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusOK, "SUCCESS", "", `{"accessToken":"AT2"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server, newMemSessions("AT1", "RT1"), nil)

	err := client.Get(context.Background(), "/api/things", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthExpired))
	assert.Equal(t, int32(1), refreshCalls.Load(), "no second renewal for a retried request")
}

func TestRenewalFailureTearsDownSessionAndPropagatesOriginal401(t *testing.T) {
	t.Parallel()

	const concurrent = 3

	var unauthorized atomic.Int32
	releaseRefresh := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		if unauthorized.Add(1) == concurrent {
			close(releaseRefresh)
		}
		writeEnvelope(w, http.StatusUnauthorized, "AUTH_EXPIRED", "token expired", "null")
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		<-releaseRefresh
		time.Sleep(50 * time.Millisecond)
		writeEnvelope(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "refresh token revoked", "null")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	var expired atomic.Int32
	sessions := newMemSessions("AT1", "RT1")
	sessions.session.User = &domain.Identity{ID: 7, Nickname: "n"}
	client := newTestClient(t, server, sessions, func() { expired.Add(1) })

	var wg sync.WaitGroup
	errs := make([]error, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), "/api/things", nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		// Each caller gets its original 401, not the renewal error.
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr, "request %d", i)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status, "request %d", i)
		assert.Equal(t, "AUTH_EXPIRED", apiErr.Code, "request %d", i)
	}

	assert.Equal(t, int32(1), expired.Load())

	session, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	assert.Empty(t, session.RefreshToken)
	assert.Nil(t, session.User)
}

func TestRenewalResponseMissingAccessTokenTearsDownSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "AUTH_EXPIRED", "token expired", "null")
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "SUCCESS", "", `{"refreshToken":"RT2"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	expired := false
	sessions := newMemSessions("AT1", "RT1")
	client := newTestClient(t, server, sessions, func() { expired = true })

	err := client.Get(context.Background(), "/api/things", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, expired)

	session, loadErr := sessions.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Empty(t, session.AccessToken)
}

func TestRenewalWithoutRotatedRefreshTokenKeepsStoredOne(t *testing.T) {
	t.Parallel()

	var served atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		if served.Add(1) == 1 {
			writeEnvelope(w, http.StatusUnauthorized, "AUTH_EXPIRED", "token expired", "null")
			return
		}
		assert.Equal(t, "Bearer AT2", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "SUCCESS", "", `{"ok":true}`)
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "SUCCESS", "", `{"accessToken":"AT2"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	sessions := newMemSessions("AT1", "RT1")
	client := newTestClient(t, server, sessions, nil)

	require.NoError(t, client.Get(context.Background(), "/api/things", nil, nil))

	session, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AT2", session.AccessToken)
	assert.Equal(t, "RT1", session.RefreshToken, "refresh token unchanged when absent from the renewal response")
}

func TestMultipartSendsFieldsAndFiles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "lunch spot", r.FormValue("title"))

		file, header, err := r.FormFile("images")
		require.NoError(t, err)
		t.Cleanup(func() { _ = file.Close() })
		assert.Equal(t, "photo.jpg", header.Filename)

		writeEnvelope(w, http.StatusOK, "SUCCESS", "", `{"id":1}`)
	}))
	t.Cleanup(server.Close)

	imagePath := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("jpeg bytes"), 0o600))

	client := newTestClient(t, server, newMemSessions("AT1", "RT1"), nil)

	var out struct {
		ID int64 `json:"id"`
	}
	err := client.Multipart(context.Background(), http.MethodPost, "/api/diaries", MultipartForm{
		Fields: map[string]string{"title": "lunch spot"},
		Files:  map[string][]string{"images": {imagePath}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
}
