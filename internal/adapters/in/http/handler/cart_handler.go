// internal/adapters/in/http/handler/cart_handler.go
package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"storefront/internal/application/query"
	"storefront/internal/application/usecase"
)

// CartHandler serves the storefront cart endpoints.
//
//	POST/PUT /storefront/cart         apply a signed quantity delta
//	GET      /storefront/cart         today's cart joined with the catalog
//	POST     /storefront/cart/submit  convert the cart into today's order
type CartHandler struct {
	uc        *usecase.CartUsecase
	orders    *usecase.OrderUsecase
	cartQuery *query.CartQuery
}

func NewCartHandler(uc *usecase.CartUsecase, orders *usecase.OrderUsecase, cartQuery *query.CartQuery) http.Handler {
	return &CartHandler{uc: uc, orders: orders, cartQuery: cartQuery}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := strings.TrimRight(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	if h.uc == nil {
		log.Printf("[cart_handler] exit status=500 reason=usecase is nil path=%q\n", path)
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	isGET := r.Method == http.MethodGet
	isPOST := r.Method == http.MethodPost
	isPUT := r.Method == http.MethodPut

	switch {
	case isPOST && strings.HasSuffix(path, "/cart/submit"):
		h.handleSubmit(w, r, start)
	case (isPOST || isPUT) && strings.HasSuffix(path, "/cart"):
		h.handleDelta(w, r, start)
	case isGET && strings.HasSuffix(path, "/cart"):
		h.handleGet(w, r, start)
	default:
		log.Printf("[cart_handler] exit status=404 method=%s path=%q elapsed=%s\n", r.Method, path, time.Since(start))
		writeErr(w, http.StatusNotFound, "not found")
	}
}

// -------------------------
// request DTO
// -------------------------

type cartDeltaReq struct {
	UserID      string `json:"userId"`
	ProductID   string `json:"productId"`
	CategoryID  string `json:"categoryId"`
	ProductCode string `json:"productCode"`
	VariantName string `json:"variantName"`

	// signed; omitted means +1
	Increment *int `json:"increment"`
}

func (r cartDeltaReq) delta() int {
	if r.Increment == nil {
		return 1
	}
	return *r.Increment
}

type submitReq struct {
	UserID string `json:"userId"`
}

// -------------------------
// handlers
// -------------------------

func (h *CartHandler) handleDelta(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req cartDeltaReq
	if err := readJSON(r, &req); err != nil {
		log.Printf("[cart_handler] delta exit status=400 reason=invalid json err=%v\n", err)
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	userID := readUserID(r, req.UserID)
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	log.Printf("[cart_handler] delta request userId=%q code=%q variant=%q increment=%d\n",
		userID, req.ProductCode, req.VariantName, req.delta())

	c, cleared, err := h.uc.ApplyDelta(r.Context(), userID, usecase.DeltaInput{
		ProductID:   req.ProductID,
		CategoryID:  req.CategoryID,
		ProductCode: req.ProductCode,
		VariantName: req.VariantName,
		Delta:       req.delta(),
	})
	if err != nil {
		log.Printf("[cart_handler] delta uc error userId=%q err=%v\n", userID, err)
		writeDomainErr(w, err)
		return
	}

	if cleared {
		// last line removed: the doc is gone, tell the client explicitly
		log.Printf("[cart_handler] delta ok status=200 userId=%q cart cleared elapsed=%s\n", userID, time.Since(start))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "cart deleted",
		})
		return
	}

	log.Printf("[cart_handler] delta ok status=200 userId=%q total=%d elapsed=%s\n", userID, c.TotalQuantity, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"cart":    c,
	})
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request, start time.Time) {
	userID := readUserID(r, "")
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	if h.cartQuery == nil {
		writeErr(w, http.StatusInternalServerError, "cart_query is not configured")
		return
	}

	view, warnings, err := h.cartQuery.View(r.Context(), userID)
	if err != nil {
		log.Printf("[cart_handler] get query error userId=%q err=%v\n", userID, err)
		writeDomainErr(w, err)
		return
	}

	for _, wmsg := range warnings {
		log.Printf("[cart_handler] get warning userId=%q: %s\n", userID, wmsg)
	}

	log.Printf("[cart_handler] get ok status=200 userId=%q total=%d elapsed=%s\n", userID, view.TotalQuantity, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"date":          view.Date,
		"totalQuantity": view.TotalQuantity,
		"cart":          view.Products,
	})
}

func (h *CartHandler) handleSubmit(w http.ResponseWriter, r *http.Request, start time.Time) {
	if h.orders == nil {
		writeErr(w, http.StatusInternalServerError, "order usecase is not configured")
		return
	}

	var req submitReq
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			log.Printf("[cart_handler] submit exit status=400 reason=invalid json err=%v\n", err)
			writeErr(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}

	userID := readUserID(r, req.UserID)
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	log.Printf("[cart_handler] submit request userId=%q\n", userID)

	o, err := h.orders.Submit(r.Context(), userID)
	if err != nil {
		log.Printf("[cart_handler] submit uc error userId=%q err=%v\n", userID, err)
		writeDomainErr(w, err)
		return
	}

	log.Printf("[cart_handler] submit ok status=200 userId=%q orderId=%q total=%d elapsed=%s\n",
		userID, o.ID, o.TotalQuantity, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   o,
	})
}
