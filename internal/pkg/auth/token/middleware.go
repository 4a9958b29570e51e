package token

import (
	"context"
	"net/http"

	"takeapp/internal/pkg/logx"
)

// contextKey is a private key type so the payload cannot collide with other
// packages' context values.
type contextKey string

const (
	// contextPayloadKey stores the parsed session Payload in the request context.
	contextPayloadKey contextKey = "session_payload"
)

// CookieExtractorMiddleware reads and validates the session cookie and, on
// success, injects the Payload into the request context. Missing or invalid
// cookies are not an error: the request continues as anonymous, and the
// screens decide what an absent session means.
func CookieExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := Parse(cookie.Value, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired session cookie, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), contextPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext extracts the session Payload placed by
// CookieExtractorMiddleware. A nil return means the request is anonymous.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(contextPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}
