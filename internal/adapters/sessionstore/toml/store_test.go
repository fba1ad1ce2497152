package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	store, err := NewStore(viper.New())
	require.NoError(t, err)
	return store
}

func TestLoadReturnsEmptySessionWhenFileMissing(t *testing.T) {
	store := newTestStore(t)

	session, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	assert.Empty(t, session.RefreshToken)
	assert.Nil(t, session.User)
	assert.False(t, session.IsAuthenticated())
}

func TestSetTokensAndUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "AT1", "RT1"))
	require.NoError(t, store.SetUser(ctx, domain.Identity{ID: 7, Nickname: "n", Role: "USER"}))

	session, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AT1", session.AccessToken)
	assert.Equal(t, "RT1", session.RefreshToken)
	require.NotNil(t, session.User)
	assert.Equal(t, int64(7), session.User.ID)
	assert.Equal(t, "n", session.User.Nickname)
	assert.True(t, session.IsAuthenticated())
}

func TestSetTokensKeepsRefreshTokenWhenEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "AT1", "RT1"))
	require.NoError(t, store.SetTokens(ctx, "AT2", ""))

	session, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AT2", session.AccessToken)
	assert.Equal(t, "RT1", session.RefreshToken)
}

func TestSetTokensRejectsEmptyAccessToken(t *testing.T) {
	store := newTestStore(t)

	err := store.SetTokens(context.Background(), "", "RT1")
	require.Error(t, err)
}

func TestSetUserWithoutTokenFails(t *testing.T) {
	store := newTestStore(t)

	err := store.SetUser(context.Background(), domain.Identity{ID: 7})
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestClearRemovesTokensAndIdentityTogether(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "AT1", "RT1"))
	require.NoError(t, store.SetUser(ctx, domain.Identity{ID: 7, Nickname: "n"}))
	require.NoError(t, store.Clear(ctx))

	session, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	assert.Empty(t, session.RefreshToken)
	assert.Nil(t, session.User)

	_, err = os.Stat(store.sessionPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
}

func TestLoadDropsIdentityWithoutCredential(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "AT1", "RT1"))
	require.NoError(t, store.SetUser(ctx, domain.Identity{ID: 7, Nickname: "n"}))

	// Simulate a half-written session whose tokens were stripped but whose
	// identity survived.
	file, err := store.readSchema()
	require.NoError(t, err)
	file.AccessToken = ""
	file.RefreshToken = ""
	require.NoError(t, store.writeSchema(file))

	session, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session.User)
}

func TestSessionFileHasRestrictedMode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetTokens(ctx, "AT1", "RT1"))

	info, err := os.Stat(store.sessionPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestUnknownSchemaVersionRejected(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(store.sessionPath), 0o700))
	require.NoError(t, os.WriteFile(store.sessionPath, []byte("version = 99\n"), 0o600))

	_, err := store.Load(context.Background())
	require.Error(t, err)
}

func TestSessionPathOverrideFromConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	custom := filepath.Join(home, "elsewhere", "session.toml")
	cfg := viper.New()
	cfg.Set("session.path", custom)

	store, err := NewStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, custom, store.sessionPath)

	require.NoError(t, store.SetTokens(context.Background(), "AT1", "RT1"))
	_, err = os.Stat(custom)
	require.NoError(t, err)
}
