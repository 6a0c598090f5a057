// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/platform/di"
)

func main() {
	ctx := context.Background()

	// Lightweight healthz first so PORT is LISTENed quickly
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// DI container & heavy deps; keep /healthz even on failure
	var cont *di.Container
	if c, err := di.NewContainer(ctx); err != nil {
		log.Printf("[boot] WARN: di init failed: %v (serving /healthz only)", err)
	} else {
		cont = c
		defer cont.Close()

		deps := cont.RouterDeps()
		if deps.FirebaseAuth == nil {
			log.Printf("[boot] RouterDeps.FirebaseAuth is NIL (requests served without bearer verification)")
		}
		if deps.CartQuery == nil {
			log.Printf("[boot] RouterDeps.CartQuery is NIL (catalog DB down?)")
		}

		mux.Handle("/", httpin.NewRouter(deps))
	}

	// Port resolution: config → env:PORT → 8080
	port := ""
	allowedOrigin := ""
	if cont != nil {
		port = cont.Config.Port
		allowedOrigin = cont.Config.CORSAllowedOrigin
	}
	if port == "" {
		if p := os.Getenv("PORT"); p != "" {
			port = p
		} else {
			port = "8080"
		}
	}

	// Recover innermost, CORS outermost (covers /healthz and app routes)
	handler := middleware.CORS(allowedOrigin)(middleware.Recover(mux))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown for Cloud Run
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Printf("[boot] received signal: %v; shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[boot] server shutdown error: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("[boot] listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[boot] server error: %v", err)
	}

	<-idleConnsClosed
	log.Printf("[boot] server stopped")
}
