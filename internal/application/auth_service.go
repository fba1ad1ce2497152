package application

import (
	"context"
	"fmt"

	"github.com/bnema/maplog-cli/internal/adapters/api"
	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/bnema/maplog-cli/internal/ports"
)

// AuthService owns the session lifecycle: login, signup, logout, and
// hydrating the identity behind a stored credential.
type AuthService struct {
	client   *api.Client
	sessions ports.SessionStore
}

func NewAuthService(client *api.Client, sessions ports.SessionStore) *AuthService {
	return &AuthService{client: client, sessions: sessions}
}

type loginPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	Nickname     string `json:"nickname"`
	Role         string `json:"role"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (s *AuthService) Login(ctx context.Context, credentials Credentials) (domain.Identity, error) {
	var payload loginPayload
	if err := s.client.Post(ctx, "/api/auth/login", credentials, &payload); err != nil {
		return domain.Identity{}, err
	}

	return s.storeLogin(ctx, credentials.Email, payload)
}

func (s *AuthService) Signup(ctx context.Context, request SignupRequest) (domain.Identity, error) {
	var payload loginPayload
	if err := s.client.Post(ctx, "/api/auth/signup", request, &payload); err != nil {
		return domain.Identity{}, err
	}

	return s.storeLogin(ctx, request.Email, payload)
}

func (s *AuthService) storeLogin(ctx context.Context, email string, payload loginPayload) (domain.Identity, error) {
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return domain.Identity{}, domain.ErrInvalidLoginPayload
	}

	if err := s.sessions.SetTokens(ctx, payload.AccessToken, payload.RefreshToken); err != nil {
		return domain.Identity{}, fmt.Errorf("store tokens: %w", err)
	}

	user := domain.Identity{
		ID:       payload.UserID,
		Email:    email,
		Nickname: payload.Nickname,
		Role:     payload.Role,
	}
	if err := s.sessions.SetUser(ctx, user); err != nil {
		return domain.Identity{}, fmt.Errorf("store identity: %w", err)
	}

	return user, nil
}

// Logout tells the server to revoke the tokens, then clears the local
// session even when the server call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	serverErr := s.client.Post(ctx, "/api/auth/logout", nil, nil)

	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return serverErr
}

// HydrateIdentity fetches the profile behind the stored credential and
// persists it, for sessions that carry a token but no identity yet.
func (s *AuthService) HydrateIdentity(ctx context.Context) (domain.Identity, error) {
	var user domain.Identity
	if err := s.client.Get(ctx, "/api/users/me", nil, &user); err != nil {
		return domain.Identity{}, err
	}

	if err := s.sessions.SetUser(ctx, user); err != nil {
		return domain.Identity{}, fmt.Errorf("store identity: %w", err)
	}

	return user, nil
}

func (s *AuthService) Session(ctx context.Context) (domain.Session, error) {
	return s.sessions.Load(ctx)
}

func (s *AuthService) ClearSession(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}
