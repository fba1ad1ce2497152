package application

import (
	"context"

	"github.com/bnema/maplog-cli/internal/adapters/api"
	"github.com/bnema/maplog-cli/internal/domain"
)

type FriendService struct {
	client *api.Client
}

func NewFriendService(client *api.Client) *FriendService {
	return &FriendService{client: client}
}

func (s *FriendService) SendRequest(ctx context.Context, receiverID int64) error {
	body := map[string]int64{"receiverId": receiverID}
	return s.client.Post(ctx, "/api/friends", body, nil)
}

func (s *FriendService) Respond(ctx context.Context, friendID int64, action domain.FriendAction) error {
	body := map[string]string{"action": string(action)}
	return s.client.Patch(ctx, "/api/friends/"+formatID(friendID), body, nil)
}

func (s *FriendService) Friends(ctx context.Context) ([]domain.Friend, error) {
	var friends []domain.Friend
	if err := s.client.Get(ctx, "/api/friends", nil, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (s *FriendService) Pending(ctx context.Context) ([]domain.FriendRequest, error) {
	var pending []domain.FriendRequest
	if err := s.client.Get(ctx, "/api/friends/pending", nil, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}
