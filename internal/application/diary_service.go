package application

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bnema/maplog-cli/internal/adapters/api"
	"github.com/bnema/maplog-cli/internal/domain"
)

type DiaryService struct {
	client *api.Client
}

func NewDiaryService(client *api.Client) *DiaryService {
	return &DiaryService{client: client}
}

// DiaryDraft is the writable part of an entry. The server consumes it as
// multipart form fields so image attachments can ride along.
type DiaryDraft struct {
	Title        string
	Content      string
	Latitude     float64
	Longitude    float64
	LocationName string
	Address      string
	VisitedAt    time.Time
	Visibility   domain.Visibility
}

func (d DiaryDraft) formFields() map[string]string {
	fields := map[string]string{
		"title":        d.Title,
		"content":      d.Content,
		"latitude":     strconv.FormatFloat(d.Latitude, 'f', -1, 64),
		"longitude":    strconv.FormatFloat(d.Longitude, 'f', -1, 64),
		"locationName": d.LocationName,
	}
	if d.Address != "" {
		fields["address"] = d.Address
	}
	if !d.VisitedAt.IsZero() {
		fields["visitedAt"] = d.VisitedAt.Format("2006-01-02T15:04:05")
	}
	if d.Visibility != "" {
		fields["visibility"] = string(d.Visibility)
	}
	return fields
}

func (s *DiaryService) Create(ctx context.Context, draft DiaryDraft, imagePaths []string) (domain.Diary, error) {
	form := api.MultipartForm{Fields: draft.formFields()}
	if len(imagePaths) > 0 {
		form.Files = map[string][]string{"images": imagePaths}
	}

	var diary domain.Diary
	if err := s.client.Multipart(ctx, http.MethodPost, "/api/diaries", form, &diary); err != nil {
		return domain.Diary{}, err
	}
	return diary, nil
}

func (s *DiaryService) Get(ctx context.Context, diaryID int64) (domain.Diary, error) {
	var diary domain.Diary
	if err := s.client.Get(ctx, "/api/diaries/"+formatID(diaryID), nil, &diary); err != nil {
		return domain.Diary{}, err
	}
	return diary, nil
}

func (s *DiaryService) Update(ctx context.Context, diaryID int64, draft DiaryDraft, imagePaths []string) (domain.Diary, error) {
	form := api.MultipartForm{Fields: draft.formFields()}
	if len(imagePaths) > 0 {
		form.Files = map[string][]string{"images": imagePaths}
	}

	var diary domain.Diary
	if err := s.client.Multipart(ctx, http.MethodPut, "/api/diaries/"+formatID(diaryID), form, &diary); err != nil {
		return domain.Diary{}, err
	}
	return diary, nil
}

func (s *DiaryService) Delete(ctx context.Context, diaryID int64) error {
	return s.client.Delete(ctx, "/api/diaries/"+formatID(diaryID), nil, nil)
}

// Markers returns the diary pins inside a map viewport.
func (s *DiaryService) Markers(ctx context.Context, bounds domain.Bounds) ([]domain.Marker, error) {
	query := url.Values{}
	query.Set("swLat", strconv.FormatFloat(bounds.SWLat, 'f', -1, 64))
	query.Set("swLng", strconv.FormatFloat(bounds.SWLng, 'f', -1, 64))
	query.Set("neLat", strconv.FormatFloat(bounds.NELat, 'f', -1, 64))
	query.Set("neLng", strconv.FormatFloat(bounds.NELng, 'f', -1, 64))

	var markers []domain.Marker
	if err := s.client.Get(ctx, "/api/diaries/map", query, &markers); err != nil {
		return nil, err
	}
	return markers, nil
}

func (s *DiaryService) Share(ctx context.Context, diaryID int64, friendIDs []int64) error {
	body := map[string][]int64{"friendIds": friendIDs}
	return s.client.Post(ctx, "/api/diaries/"+formatID(diaryID)+"/share", body, nil)
}

func (s *DiaryService) Unshare(ctx context.Context, diaryID, userID int64) error {
	return s.client.Delete(ctx, "/api/diaries/"+formatID(diaryID)+"/share/"+formatID(userID), nil, nil)
}

func (s *DiaryService) AddScrap(ctx context.Context, diaryID int64) error {
	body := map[string]int64{"diaryId": diaryID}
	return s.client.Post(ctx, "/api/scraps", body, nil)
}

func (s *DiaryService) RemoveScrap(ctx context.Context, diaryID int64) error {
	return s.client.Delete(ctx, "/api/scraps/"+formatID(diaryID), nil, nil)
}

// Feed returns the paged diary feed shared by friends.
func (s *DiaryService) Feed(ctx context.Context, page, size int) (domain.Page[domain.DiarySummary], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var feed domain.Page[domain.DiarySummary]
	if err := s.client.Get(ctx, "/api/feed", query, &feed); err != nil {
		return domain.Page[domain.DiarySummary]{}, err
	}
	return feed, nil
}
