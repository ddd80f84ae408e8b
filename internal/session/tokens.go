package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/database"
)

type contextKey string

const claimsKey contextKey = "sessionClaims"

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// Tokens mints and rotates the session cookies. Refresh tokens are recorded
// in our own database so they can be revoked.
type Tokens struct {
	db            database.DBTX
	secret        string
	secureCookies bool
}

func NewTokens(db database.DBTX, secret string, secureCookies bool) *Tokens {
	return &Tokens{db: db, secret: secret, secureCookies: secureCookies}
}

// Issue mints a fresh access/refresh pair for the user and sets both cookies.
func (t *Tokens) Issue(ctx context.Context, w http.ResponseWriter, user *api.User) error {
	tokenID, err := newTokenID()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(RefreshTokenDuration)
	if _, err := t.db.Exec(ctx,
		"INSERT INTO refresh_tokens (token_id, user_id, expires_at, revoked) VALUES ($1, $2, $3, false)",
		tokenID, user.ID, expiresAt,
	); err != nil {
		return err
	}

	accessToken, err := GenerateAccessToken(t.secret, user.ID, user.IsAdmin)
	if err != nil {
		return err
	}
	refreshToken, err := GenerateRefreshToken(t.secret, user.ID, user.IsAdmin, tokenID)
	if err != nil {
		return err
	}

	t.setCookie(w, accessCookie, accessToken, "/", int(AccessTokenDuration/time.Second))
	t.setCookie(w, refreshCookie, refreshToken, "/api/auth", int(RefreshTokenDuration/time.Second))
	return nil
}

// Refresh rotates the pair: the presented refresh token is revoked and a new
// pair is issued for the same user.
func (t *Tokens) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		return errors.New("refresh token not found")
	}

	claims, err := ValidateToken(t.secret, cookie.Value)
	if err != nil {
		return errors.New("invalid refresh token")
	}
	if claims.TokenType != tokenTypeRefresh || claims.TokenID == "" {
		return errors.New("invalid refresh token")
	}

	if err := t.validateStored(ctx, claims.UserID, claims.TokenID); err != nil {
		return errors.New("invalid refresh token")
	}
	if err := t.revoke(ctx, claims.TokenID); err != nil {
		return err
	}

	return t.Issue(ctx, w, &api.User{ID: claims.UserID, IsAdmin: claims.Admin})
}

// Clear revokes the presented refresh token, if any, and expires both
// cookies.
func (t *Tokens) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		if claims, err := ValidateToken(t.secret, cookie.Value); err == nil && claims.TokenType == tokenTypeRefresh && claims.TokenID != "" {
			_ = t.revoke(ctx, claims.TokenID)
		}
	}
	t.setCookie(w, accessCookie, "", "/", -1)
	t.setCookie(w, refreshCookie, "", "/api/auth", -1)
}

// Middleware requires a valid access token, from the session cookie or a
// bearer header, and threads the claims through the request context.
func (t *Tokens) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := t.requestClaims(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin allows only sessions carrying the admin flag. It must run
// inside Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := FromContext(r.Context())
		if claims == nil || !claims.Admin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the session claims set by Middleware, nil when the
// request is unauthenticated.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// Identify is the optional-auth variant: it returns claims when the request
// carries a valid access token and nil otherwise, never failing the request.
func (t *Tokens) Identify(r *http.Request) *Claims {
	claims, err := t.requestClaims(r)
	if err != nil {
		return nil
	}
	return claims
}

func (t *Tokens) requestClaims(r *http.Request) (*Claims, error) {
	tokenStr := ""
	if cookie, err := r.Cookie(accessCookie); err == nil {
		tokenStr = cookie.Value
	} else if header := r.Header.Get("Authorization"); header != "" {
		tokenStr, _ = strings.CutPrefix(header, "Bearer ")
	}
	if tokenStr == "" {
		return nil, errors.New("no access token")
	}

	claims, err := ValidateToken(t.secret, tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}

func (t *Tokens) setCookie(w http.ResponseWriter, name, value, path string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   t.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

func (t *Tokens) validateStored(ctx context.Context, userID, tokenID string) error {
	var revoked bool
	var expiresAt time.Time
	err := t.db.QueryRow(ctx,
		"SELECT revoked, expires_at FROM refresh_tokens WHERE token_id = $1 AND user_id = $2",
		tokenID, userID,
	).Scan(&revoked, &expiresAt)
	if err != nil {
		return err
	}
	if revoked || time.Now().After(expiresAt) {
		return errors.New("token revoked or expired")
	}
	return nil
}

func (t *Tokens) revoke(ctx context.Context, tokenID string) error {
	_, err := t.db.Exec(ctx, "UPDATE refresh_tokens SET revoked = true, revoked_at = now() WHERE token_id = $1", tokenID)
	return err
}

func newTokenID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
