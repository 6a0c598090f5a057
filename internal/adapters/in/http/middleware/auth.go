// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient is an alias so RouterDeps can carry the client without
// importing the firebase package directly.
type FirebaseAuthClient = fbauth.Client

// context keys use a private type to avoid collisions (SA1029)
type ctxKey struct{ name string }

var ctxKeyUID = ctxKey{name: "uid"}

// AuthMiddleware verifies
//
//   - Authorization: Bearer <ID_TOKEN>
//
// when the header is present and stores the Firebase UID in the request
// context. Requests without an Authorization header pass through
// unannotated; the UID is only the last-resort identity fallback, and
// handlers that resolve no user at all answer 400 themselves. A token that
// is present but fails verification is still rejected with 401.
type AuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.FirebaseAuth == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: malformed authorization header", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		log.Printf("[AuthMiddleware] path=%s uid=%s", r.URL.Path, uid)

		ctx := context.WithValue(r.Context(), ctxKeyUID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUID returns the Firebase UID injected by the middleware.
func CurrentUID(r *http.Request) (string, bool) {
	v := r.Context().Value(ctxKeyUID)
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}
