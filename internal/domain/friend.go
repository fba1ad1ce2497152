package domain

import "time"

type FriendAction string

const (
	FriendAccept FriendAction = "ACCEPT"
	FriendReject FriendAction = "REJECT"
)

type Friend struct {
	FriendID        int64      `json:"friendId"`
	UserID          int64      `json:"userId"`
	Nickname        string     `json:"nickname"`
	ProfileImageURL string     `json:"profileImageUrl,omitempty"`
	RespondedAt     *time.Time `json:"respondedAt,omitempty"`
}

// FriendRequest is a pending incoming request awaiting a respond action.
type FriendRequest struct {
	FriendID                 int64     `json:"friendId"`
	RequesterID              int64     `json:"requesterId"`
	RequesterNickname        string    `json:"requesterNickname"`
	RequesterProfileImageURL string    `json:"requesterProfileImageUrl,omitempty"`
	RequestedAt              time.Time `json:"requestedAt"`
}
