package domain

import "errors"

var (
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrAdminRequired          = errors.New("admin role required")
	ErrAuthExpired            = errors.New("access token expired")
	ErrRenewalFailed          = errors.New("token renewal failed")
	ErrInvalidLoginPayload    = errors.New("login response missing tokens")
	ErrInvalidRefreshResponse = errors.New("refresh response missing access token")
)
