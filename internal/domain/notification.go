package domain

import "time"

type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "FRIEND_REQUEST"
	NotificationFriendAccepted NotificationType = "FRIEND_ACCEPTED"
	NotificationDiaryShared    NotificationType = "DIARY_SHARED"
)

// IsFriendEvent reports whether a notification of this type should prompt
// collaborators to re-fetch friend-relationship data.
func (t NotificationType) IsFriendEvent() bool {
	return t == NotificationFriendRequest || t == NotificationFriendAccepted
}

type Notification struct {
	ID        int64            `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Content   string           `json:"content,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
}

func UnreadCount(notifications []Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count
}
