package httputil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
)

type nonceKeyType struct{}

var nonceKey nonceKeyType

// GenerateNonce returns a fresh per-request CSP nonce. An empty string is
// returned only if the system entropy source fails.
func GenerateNonce() string {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		slog.Error("csp nonce generation failed", "error", err)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// ContextWithNonce attaches the request's CSP nonce so page templates can
// mark their inline blocks.
func ContextWithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey, nonce)
}

// NonceFromContext returns the request's CSP nonce, or "" outside the
// security middleware.
func NonceFromContext(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey).(string)
	return nonce
}
