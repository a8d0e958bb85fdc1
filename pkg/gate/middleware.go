package gate

import (
	"context"
	"log/slog"
	"net/http"

	"mayaportal/pkg/platform/httputil"
)

type claimsKey struct{}

// RequireAuth returns middleware that validates the session cookie and stores
// the verified claims in the request context. Every failure (missing cookie,
// malformed token, bad signature, expired session) produces the same 401
// response; the inner cause is logged at debug level only, never exposed.
func RequireAuth(codec *Codec, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(CookieName)
			if err != nil {
				logger.DebugContext(ctx, "unauthenticated request - no session cookie",
					"path", r.URL.Path,
				)
				httputil.WriteUnauthorized(w)
				return
			}

			claims, err := codec.Decode(cookie.Value)
			if err != nil {
				logger.DebugContext(ctx, "unauthenticated request - token rejected",
					"error", err,
					"path", r.URL.Path,
				)
				httputil.WriteUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, claimsKey{}, claims)))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireAuth, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}
