package ports

import (
	"context"

	"github.com/bnema/maplog-cli/internal/domain"
)

// SessionStore persists the singleton session across process runs.
//
// SetTokens stores a new access token and, when non-empty, a rotated
// refresh token; an empty refresh token keeps the stored one. Clear wipes
// credentials and identity in one step so no half-cleared session is ever
// observable.
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, error)
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	SetUser(ctx context.Context, user domain.Identity) error
	Clear(ctx context.Context) error
}
