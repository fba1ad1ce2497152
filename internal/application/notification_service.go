package application

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/bnema/maplog-cli/internal/adapters/api"
	"github.com/bnema/maplog-cli/internal/domain"
	"github.com/bnema/maplog-cli/internal/ports"
)

const (
	streamEventConnect      = "connect"
	streamEventNotification = "notification"
)

// NotificationService holds the in-memory notification list. The list is
// replaced wholesale per fetch; the push stream is treated as a hint that
// triggers a refetch, never as the source of truth.
type NotificationService struct {
	client *api.Client
	clock  ports.Clock
	logf   func(format string, args ...any)

	mu            sync.Mutex
	notifications []domain.Notification

	// friendEvents counts friend-related push payloads so collaborators
	// know when to re-poll friend data.
	friendEvents atomic.Uint64
}

func NewNotificationService(client *api.Client, clock ports.Clock, logf func(format string, args ...any)) *NotificationService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &NotificationService{client: client, clock: clock, logf: logf}
}

// Fetch replaces the whole list from the server.
func (s *NotificationService) Fetch(ctx context.Context) ([]domain.Notification, error) {
	var page domain.Page[domain.Notification]
	if err := s.client.Get(ctx, "/api/notifications", nil, &page); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.notifications = page.Content
	s.mu.Unlock()

	return page.Content, nil
}

func (s *NotificationService) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *NotificationService) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.UnreadCount(s.notifications)
}

func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	path := "/api/notifications/" + formatID(id) + "/read"
	if err := s.client.Patch(ctx, path, nil, nil); err != nil {
		return err
	}

	now := s.clock.Now()
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			s.notifications[i].ReadAt = &now
			break
		}
	}
	s.mu.Unlock()

	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	if err := s.client.Patch(ctx, "/api/notifications/read-all", nil, nil); err != nil {
		return err
	}

	now := s.clock.Now()
	s.mu.Lock()
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			s.notifications[i].ReadAt = &now
		}
	}
	s.mu.Unlock()

	return nil
}

// Delete removes notifications by read state: "Y" deletes read ones, "N"
// deletes unread ones, empty deletes everything.
func (s *NotificationService) Delete(ctx context.Context, isRead string) error {
	query := url.Values{}
	if isRead != "" {
		query.Set("isRead", isRead)
	}
	if err := s.client.Delete(ctx, "/api/notifications", query, nil); err != nil {
		return err
	}

	s.mu.Lock()
	switch isRead {
	case "Y":
		s.notifications = keepNotifications(s.notifications, func(n domain.Notification) bool { return !n.Read })
	case "N":
		s.notifications = keepNotifications(s.notifications, func(n domain.Notification) bool { return n.Read })
	default:
		s.notifications = nil
	}
	s.mu.Unlock()

	return nil
}

// FriendEvents returns the running count of friend-related push events.
func (s *NotificationService) FriendEvents() uint64 {
	return s.friendEvents.Load()
}

type streamEventPayload struct {
	Type domain.NotificationType `json:"type"`
}

// HandleStreamEvent consumes one push event. A notification event always
// triggers a full refetch; its payload is only a hint whose parse failure
// is swallowed. Unknown event types are ignored.
func (s *NotificationService) HandleStreamEvent(ctx context.Context, event api.Event) {
	switch event.Type {
	case streamEventConnect:
		// Informational only.
	case streamEventNotification:
		if _, err := s.Fetch(ctx); err != nil {
			s.logf("refetch notifications: %v", err)
		}

		var payload streamEventPayload
		if err := json.Unmarshal([]byte(event.Data), &payload); err != nil {
			return
		}
		if payload.Type.IsFriendEvent() {
			s.friendEvents.Add(1)
		}
	}
}

func keepNotifications(notifications []domain.Notification, keep func(domain.Notification) bool) []domain.Notification {
	kept := notifications[:0]
	for _, n := range notifications {
		if keep(n) {
			kept = append(kept, n)
		}
	}
	return kept
}
