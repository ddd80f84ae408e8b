// Package session handles visitor authentication: sign-in against the
// platform API, local session tokens, and the path to return the visitor to
// after sign-in. Nothing here is shared between visitors; identity lives in
// token claims and the intended path in a per-visitor cookie.
package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/reelhouse/reelhouse/internal/api"
)

// AuthError is a reportable sign-in failure. It is returned instead of the
// raw transport error so callers can render the message directly.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

type authAPI interface {
	SignIn(ctx context.Context, email, password string) (*api.Session, error)
	SignUp(ctx context.Context, in api.SignupRequest) (*api.Session, error)
}

// Manager authenticates visitors against the platform API and normalizes
// its failures. It holds no per-visitor state.
type Manager struct {
	api authAPI
}

func NewManager(a authAPI) *Manager {
	return &Manager{api: a}
}

// SignIn authenticates against the platform API. A rejected credential pair
// comes back as *AuthError.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*api.User, error) {
	session, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return nil, &AuthError{Message: apiErr.Message}
		}
		return nil, &AuthError{Message: "Unable to sign in right now. Please try again."}
	}
	return &session.User, nil
}

// SignUp registers the account and signs the new user in.
func (m *Manager) SignUp(ctx context.Context, in api.SignupRequest) (*api.User, error) {
	session, err := m.api.SignUp(ctx, in)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return nil, &AuthError{Message: apiErr.Message}
		}
		return nil, &AuthError{Message: "Unable to create your account right now. Please try again."}
	}
	return &session.User, nil
}

const (
	intendedPathCookie = "intended_path"
	intendedPathMaxAge = 10 * 60
)

// AllowedIntendedPath reports whether a path may be recorded as a post
// sign-in destination. Empty paths and paths inside the auth flow are
// rejected, so a bounce through the sign-in screen never loops back into it.
func AllowedIntendedPath(path string) bool {
	return path != "" && path != "/auth" && !strings.HasPrefix(path, "/auth/")
}

// RecordIntendedPath remembers where this visitor was headed, in a
// short-lived cookie scoped to the auth endpoints. Paths rejected by
// AllowedIntendedPath are discarded.
func RecordIntendedPath(w http.ResponseWriter, path string) {
	if !AllowedIntendedPath(path) {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     intendedPathCookie,
		Value:    url.QueryEscape(path),
		Path:     "/api/auth",
		MaxAge:   intendedPathMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ConsumeIntendedPath returns this visitor's recorded path and clears the
// cookie. Falls back to the home page when nothing was recorded or the
// recorded value is no longer acceptable.
func ConsumeIntendedPath(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(intendedPathCookie)
	if err != nil {
		return "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     intendedPathCookie,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	path, err := url.QueryUnescape(c.Value)
	if err != nil || !AllowedIntendedPath(path) {
		return "/"
	}
	return path
}
