package api

import (
	"fmt"
	"net/http"

	"github.com/bnema/maplog-cli/internal/domain"
)

// Error is a non-2xx server response after envelope decoding.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
}

// Is lets callers match a propagated 401 with errors.Is(err, domain.ErrAuthExpired).
func (e *Error) Is(target error) bool {
	return target == domain.ErrAuthExpired && e.Status == http.StatusUnauthorized
}
