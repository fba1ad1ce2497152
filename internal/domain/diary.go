package domain

import "time"

type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityFriends Visibility = "FRIENDS"
	VisibilityPublic  Visibility = "PUBLIC"
)

// Diary is the full detail record for one entry pinned to a map location.
type Diary struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"userId"`
	AuthorNickname string       `json:"authorNickname"`
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	Latitude       float64      `json:"latitude"`
	Longitude      float64      `json:"longitude"`
	LocationName   string       `json:"locationName"`
	Address        string       `json:"address,omitempty"`
	VisitedAt      time.Time    `json:"visitedAt"`
	Visibility     Visibility   `json:"visibility"`
	CreatedAt      time.Time    `json:"createdAt"`
	Scraped        bool         `json:"scraped"`
	Images         []DiaryImage `json:"images,omitempty"`
}

type DiaryImage struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// DiarySummary is the compact listing form used by feeds and "my diaries".
type DiarySummary struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	LocationName string     `json:"locationName"`
	VisitedAt    time.Time  `json:"visitedAt"`
	Visibility   Visibility `json:"visibility"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Marker is a diary pin inside a queried map viewport.
type Marker struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Title     string  `json:"title"`
}

// Bounds is a south-west / north-east viewport rectangle.
type Bounds struct {
	SWLat float64
	SWLng float64
	NELat float64
	NELng float64
}
