// internal/adapters/in/http/handler/helpers.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/middleware"
	fsadapter "storefront/internal/adapters/out/firestore"
	"storefront/internal/application/query"
	"storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	orderdom "storefront/internal/domain/order"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": msg,
	})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// readUserID resolves the acting user: explicit query param first, then the
// X-User-Id header, then the request body fallback, then the verified
// Firebase UID when the auth middleware ran.
func readUserID(r *http.Request, fallback string) string {
	if v := strings.TrimSpace(r.URL.Query().Get("userId")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get("X-User-Id")); v != "" {
		return v
	}
	if v := strings.TrimSpace(fallback); v != "" {
		return v
	}
	if uid, ok := middleware.CurrentUID(r); ok {
		return uid
	}
	return ""
}

// writeDomainErr maps application errors onto HTTP statuses:
// invalid argument 400, not found 404, lost transaction race 409,
// anything else 500.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeErr(w, http.StatusInternalServerError, "unknown error")
	case errors.Is(err, usecase.ErrCartInvalidArgument),
		errors.Is(err, usecase.ErrOrderInvalidArgument),
		errors.Is(err, usecase.ErrCartEmpty),
		errors.Is(err, query.ErrInvalidArgument),
		errors.Is(err, cartdom.ErrInvalidCart),
		errors.Is(err, cartdom.ErrZeroDelta),
		errors.Is(err, cartdom.ErrItemNotFound),
		errors.Is(err, orderdom.ErrInvalidOrder),
		errors.Is(err, orderdom.ErrNoItems):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrCartNotFound),
		errors.Is(err, usecase.ErrOrderNotFound),
		errors.Is(err, query.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, fsadapter.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
