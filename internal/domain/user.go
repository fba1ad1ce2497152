package domain

import "time"

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

// UserSummary is the public search-result form of a user.
type UserSummary struct {
	ID              int64  `json:"id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// AdminUser is the admin-panel listing form, including moderation state.
type AdminUser struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	Nickname         string     `json:"nickname"`
	Role             string     `json:"role"`
	Status           UserStatus `json:"status"`
	SuspensionReason string     `json:"suspensionReason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Page is the server's paged-list envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}
