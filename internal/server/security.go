package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/reelhouse/reelhouse/internal/httputil"
)

// securityHeaders applies the baseline response headers. The CSP matters
// only for the server-rendered share watch page; the JSON API ignores it.
func securityHeaders(baseURL string) func(http.Handler) http.Handler {
	strictTransport := strings.HasPrefix(baseURL, "https://")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := httputil.GenerateNonce()
			ctx := httputil.ContextWithNonce(r.Context(), nonce)

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), screen-wake-lock=(self)")

			csp := fmt.Sprintf(
				"default-src 'self'; img-src 'self' data: https:; media-src 'self' https:; script-src 'self' 'nonce-%s'; style-src 'self' 'nonce-%s'; frame-ancestors 'self';",
				nonce, nonce,
			)
			w.Header().Set("Content-Security-Policy", csp)

			if strictTransport {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
