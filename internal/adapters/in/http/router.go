// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"storefront/internal/adapters/in/http/handler"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/query"
	"storefront/internal/application/usecase"
)

// RouterDeps collects the usecases and read models injected from main.go.
type RouterDeps struct {
	CartUC  *usecase.CartUsecase
	OrderUC *usecase.OrderUsecase

	CartQuery  *query.CartQuery
	OrderQuery *query.OrderQuery

	// when nil, tokens are never verified (local dev); when set, a present
	// bearer token is verified and its UID attached, tokenless requests
	// pass through and identify themselves via userId instead
	FirebaseAuth *middleware.FirebaseAuthClient
}

// NewRouter sets up HTTP routing for the storefront endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	withAuth := func(h http.Handler) http.Handler {
		if deps.FirebaseAuth == nil {
			return h
		}
		am := &middleware.AuthMiddleware{FirebaseAuth: deps.FirebaseAuth}
		return am.Handler(h)
	}

	if deps.CartUC != nil {
		cart := handler.NewCartHandler(deps.CartUC, deps.OrderUC, deps.CartQuery)
		mux.Handle("/storefront/cart", withAuth(cart))
		mux.Handle("/storefront/cart/", withAuth(cart))
	}

	if deps.OrderUC != nil {
		orders := handler.NewOrderHandler(deps.OrderUC, deps.OrderQuery)
		mux.Handle("/storefront/orders", withAuth(orders))
		mux.Handle("/storefront/orders/", withAuth(orders))
	}

	return mux
}
