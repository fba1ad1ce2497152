package domain

import "time"

const RoleAdmin = "ADMIN"

// Identity is the authenticated user's profile as returned by the server.
type Identity struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Nickname        string    `json:"nickname"`
	Role            string    `json:"role"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// Session holds the bearer credentials and, once hydrated, the identity
// they belong to. Identity is only ever set while AccessToken is non-empty.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *Identity
}

func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.Role == RoleAdmin
}

// UserID returns 0 until the identity has been hydrated.
func (s Session) UserID() int64 {
	if s.User == nil {
		return 0
	}
	return s.User.ID
}

func (s Session) Nickname() string {
	if s.User == nil {
		return ""
	}
	return s.User.Nickname
}

// NeedsHydration reports whether a credential is stored but the identity
// behind it is not yet known.
func (s Session) NeedsHydration() bool {
	return s.AccessToken != "" && s.User == nil
}
