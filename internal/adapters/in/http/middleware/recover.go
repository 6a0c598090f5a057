// internal/adapters/in/http/middleware/recover.go
package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				// keep the real cause in the service logs
				log.Printf("[recover] PANIC: %v\n%s", rec, string(debug.Stack()))

				// always answer here so the platform never sees a dropped request
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"success":false,"message":"internal server error"}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
