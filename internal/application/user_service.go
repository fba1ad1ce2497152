package application

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bnema/maplog-cli/internal/adapters/api"
	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/bnema/maplog-cli/internal/ports"
)

type UserService struct {
	client   *api.Client
	sessions ports.SessionStore
}

func NewUserService(client *api.Client, sessions ports.SessionStore) *UserService {
	return &UserService{client: client, sessions: sessions}
}

func (s *UserService) Me(ctx context.Context) (domain.Identity, error) {
	var user domain.Identity
	if err := s.client.Get(ctx, "/api/users/me", nil, &user); err != nil {
		return domain.Identity{}, err
	}
	return user, nil
}

// UpdateProfile changes nickname and/or profile image and refreshes the
// stored identity with the result.
func (s *UserService) UpdateProfile(ctx context.Context, nickname, imagePath string) (domain.Identity, error) {
	form := api.MultipartForm{Fields: map[string]string{}}
	if nickname != "" {
		form.Fields["nickname"] = nickname
	}
	if imagePath != "" {
		form.Files = map[string][]string{"profileImage": {imagePath}}
	}

	var user domain.Identity
	if err := s.client.Multipart(ctx, http.MethodPatch, "/api/users/me", form, &user); err != nil {
		return domain.Identity{}, err
	}

	if err := s.sessions.SetUser(ctx, user); err != nil {
		return domain.Identity{}, err
	}

	return user, nil
}

func (s *UserService) MyDiaries(ctx context.Context, page, size int) (domain.Page[domain.DiarySummary], error) {
	return s.pagedDiaries(ctx, "/api/users/me/diaries", page, size)
}

func (s *UserService) MyScraps(ctx context.Context, page, size int) (domain.Page[domain.DiarySummary], error) {
	return s.pagedDiaries(ctx, "/api/users/me/scraps", page, size)
}

func (s *UserService) pagedDiaries(ctx context.Context, path string, page, size int) (domain.Page[domain.DiarySummary], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result domain.Page[domain.DiarySummary]
	if err := s.client.Get(ctx, path, query, &result); err != nil {
		return domain.Page[domain.DiarySummary]{}, err
	}
	return result, nil
}

// DeleteAccount removes the account server-side and clears the local
// session.
func (s *UserService) DeleteAccount(ctx context.Context) error {
	if err := s.client.Delete(ctx, "/api/users/me", nil, nil); err != nil {
		return err
	}
	return s.sessions.Clear(ctx)
}

func (s *UserService) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	query := url.Values{}
	query.Set("nickname", nickname)

	var result struct {
		Available bool `json:"available"`
	}
	if err := s.client.Get(ctx, "/api/users/check-nickname", query, &result); err != nil {
		return false, err
	}
	return result.Available, nil
}

func (s *UserService) Search(ctx context.Context, nickname string) ([]domain.UserSummary, error) {
	query := url.Values{}
	query.Set("nickname", nickname)

	var users []domain.UserSummary
	if err := s.client.Get(ctx, "/api/users/search", query, &users); err != nil {
		return nil, err
	}
	return users, nil
}
