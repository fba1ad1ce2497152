package application

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/bnema/maplog-cli/internal/adapters/api"
	"github.com/bnema/maplog-cli/internal/domain"
)

type AdminService struct {
	client *api.Client
}

func NewAdminService(client *api.Client) *AdminService {
	return &AdminService{client: client}
}

func (s *AdminService) Users(ctx context.Context, page, size int, status domain.UserStatus) (domain.Page[domain.AdminUser], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if status != "" {
		query.Set("status", string(status))
	}

	var users domain.Page[domain.AdminUser]
	if err := s.client.Get(ctx, "/api/admin/users", query, &users); err != nil {
		return domain.Page[domain.AdminUser]{}, err
	}
	return users, nil
}

type StatusChange struct {
	Status              domain.UserStatus `json:"status"`
	SuspensionReason    string            `json:"suspensionReason,omitempty"`
	SuspensionExpiresAt *time.Time        `json:"suspensionExpiresAt,omitempty"`
}

func (s *AdminService) ChangeStatus(ctx context.Context, userID int64, change StatusChange) error {
	return s.client.Patch(ctx, "/api/admin/users/"+formatID(userID)+"/status", change, nil)
}
