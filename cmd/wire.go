package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/bnema/maplog-cli/internal/adapters/api"
	sessionstore "github.com/bnema/maplog-cli/internal/adapters/sessionstore/toml"
	"github.com/bnema/maplog-cli/internal/application"
	"github.com/bnema/maplog-cli/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	client        *api.Client
	sessions      ports.SessionStore
	auth          *application.AuthService
	users         *application.UserService
	diaries       *application.DiaryService
	friends       *application.FriendService
	notifications *application.NotificationService
	admin         *application.AdminService
	baseURL       string
	streamAuth    api.StreamAuthMode
	now           func() time.Time
}

func wireApp() (*app, error) {
	sessions, err := sessionstore.NewStore(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	baseURL := envOrDefault("MAPLOG_API_BASE_URL", "http://localhost:8080")

	streamAuth := api.StreamAuthHeader
	if envOrDefault("MAPLOG_STREAM_AUTH", "header") == "query" {
		streamAuth = api.StreamAuthQuery
	}

	client, err := api.NewClient(api.Config{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
		Sessions:   sessions,
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "session expired; run `maplog login` to sign in again")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	notifications := application.NewNotificationService(client, ports.SystemClock{}, func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	return &app{
		client:        client,
		sessions:      sessions,
		auth:          application.NewAuthService(client, sessions),
		users:         application.NewUserService(client, sessions),
		diaries:       application.NewDiaryService(client),
		friends:       application.NewFriendService(client),
		notifications: notifications,
		admin:         application.NewAdminService(client),
		baseURL:       baseURL,
		streamAuth:    streamAuth,
		now:           time.Now,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
