package jwt

import (
	"context"
	"net/http"

	"dmchat/internal/pkg/logx"
)

// Context key for storing the Claims struct, preventing collisions with other packages.
type contextKey string

const (
	// ContextAuthClaimsKey is the key used to store the parsed Claims (user identity)
	// in the request Context.
	ContextAuthClaimsKey contextKey = "auth_claims"
)

// IdentityExtractorMiddleware attempts to extract and validate a JWT from the
// usertoken cookie. It injects the Claims into the Context upon success. It does
// NOT interrupt the request (no 401 response) on failure or missing token,
// treating the user as anonymous instead.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				// Token is missing. Treat as anonymous user and continue.
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ParseToken(cookie.Value, secretKey)
			if err != nil {
				// Token exists but is invalid (e.g., expired, wrong signature).
				// Log the warning but treat the user as anonymous and continue.
				logx.Warn("Invalid or expired JWT cookie, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext safely extracts the authenticated Claims from the request
// Context. Where IdentityExtractorMiddleware is used, a nil return means the user
// is anonymous.
func GetClaimsFromContext(r *http.Request) *Claims {
	claims, ok := r.Context().Value(ContextAuthClaimsKey).(*Claims)

	if !ok {
		return nil
	}

	return claims
}
