// internal/adapters/in/http/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthMiddlewarePassesThroughWithoutHeader(t *testing.T) {
	m := &AuthMiddleware{FirebaseAuth: &FirebaseAuthClient{}}

	called := false
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if uid, ok := CurrentUID(r); ok {
			t.Errorf("uid = %q, want no uid without a token", uid)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/storefront/cart?userId=U", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Fatal("tokenless request never reached the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d, want 204", rec.Code)
	}
}

func TestAuthMiddlewareRejectsBadHeader(t *testing.T) {
	m := &AuthMiddleware{FirebaseAuth: &FirebaseAuthClient{}}
	h := m.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler reached despite a bad authorization header")
	}))

	for _, header := range []string{"Basic abc", "Bearer ", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/storefront/cart", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: code = %d, want 401", header, rec.Code)
		}
	}
}
