// internal/adapters/in/http/handler/order_handler.go
package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/application/query"
	"storefront/internal/application/usecase"
	orderdom "storefront/internal/domain/order"
)

// OrderHandler serves the order endpoints.
//
//	POST   /storefront/orders              place a detached order from the cart
//	PUT    /storefront/orders/status       update fulfillment status
//	GET    /storefront/orders/grouped      per-user date-grouped summaries
//	GET    /storefront/orders/all          flat denormalized admin listing
//	DELETE /storefront/orders/by-category  purge line items of one category
//	GET    /storefront/orders/{id}         one order joined with the catalog
type OrderHandler struct {
	uc         *usecase.OrderUsecase
	orderQuery *query.OrderQuery
}

func NewOrderHandler(uc *usecase.OrderUsecase, orderQuery *query.OrderQuery) http.Handler {
	return &OrderHandler{uc: uc, orderQuery: orderQuery}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := strings.TrimRight(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	if h.uc == nil {
		log.Printf("[order_handler] exit status=500 reason=usecase is nil path=%q\n", path)
		writeErr(w, http.StatusInternalServerError, "order handler is not configured")
		return
	}

	isGET := r.Method == http.MethodGet
	isPOST := r.Method == http.MethodPost
	isPUT := r.Method == http.MethodPut
	isDEL := r.Method == http.MethodDelete

	switch {
	case isPUT && strings.HasSuffix(path, "/orders/status"):
		h.handleUpdateStatus(w, r, start)
	case isDEL && strings.HasSuffix(path, "/orders/by-category"):
		h.handleDeleteByCategory(w, r, start)
	case isGET && strings.HasSuffix(path, "/orders/grouped"):
		h.handleGrouped(w, r, start)
	case isGET && strings.HasSuffix(path, "/orders/all"):
		h.handleFlat(w, r, start)
	case isPOST && strings.HasSuffix(path, "/orders"):
		h.handlePlace(w, r, start)
	case isGET && orderIDFromPath(path) != "":
		h.handleGetOne(w, r, orderIDFromPath(path), start)
	default:
		log.Printf("[order_handler] exit status=404 method=%s path=%q elapsed=%s\n", r.Method, path, time.Since(start))
		writeErr(w, http.StatusNotFound, "not found")
	}
}

// orderIDFromPath extracts the trailing id of /storefront/orders/{id}.
func orderIDFromPath(path string) string {
	i := strings.LastIndex(path, "/orders/")
	if i < 0 {
		return ""
	}
	id := strings.TrimSpace(path[i+len("/orders/"):])
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// -------------------------
// request DTO
// -------------------------

type placeOrderReq struct {
	UserID string `json:"userId"`
	Note   string `json:"note"`
}

type statusReq struct {
	OrderID string `json:"orderId"`
	Status  *int   `json:"status"`
}

type purgeReq struct {
	Category string `json:"category"`
}

// -------------------------
// handlers
// -------------------------

func (h *OrderHandler) handlePlace(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req placeOrderReq
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			log.Printf("[order_handler] place exit status=400 reason=invalid json err=%v\n", err)
			writeErr(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}

	userID := readUserID(r, req.UserID)
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	log.Printf("[order_handler] place request userId=%q note=%q\n", userID, req.Note)

	o, err := h.uc.Place(r.Context(), userID, req.Note)
	if err != nil {
		log.Printf("[order_handler] place uc error userId=%q err=%v\n", userID, err)
		writeDomainErr(w, err)
		return
	}

	log.Printf("[order_handler] place ok status=201 userId=%q orderId=%q elapsed=%s\n", userID, o.ID, time.Since(start))
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"order":   o,
	})
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req statusReq
	if err := readJSON(r, &req); err != nil {
		log.Printf("[order_handler] status exit status=400 reason=invalid json err=%v\n", err)
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if strings.TrimSpace(req.OrderID) == "" || req.Status == nil {
		writeErr(w, http.StatusBadRequest, "orderId and status are required")
		return
	}

	log.Printf("[order_handler] status request orderId=%q status=%d\n", req.OrderID, *req.Status)

	o, err := h.uc.UpdateStatus(r.Context(), req.OrderID, *req.Status)
	if err != nil {
		log.Printf("[order_handler] status uc error orderId=%q err=%v\n", req.OrderID, err)
		writeDomainErr(w, err)
		return
	}

	log.Printf("[order_handler] status ok status=200 orderId=%q -> %s elapsed=%s\n", o.ID, o.Status.Text(), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   o,
	})
}

func (h *OrderHandler) handleDeleteByCategory(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req purgeReq
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			log.Printf("[order_handler] purge exit status=400 reason=invalid json err=%v\n", err)
			writeErr(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}

	// query param wins; blank falls back to "Unknown" in the usecase
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		category = strings.TrimSpace(req.Category)
	}

	log.Printf("[order_handler] purge request category=%q\n", category)

	sum, err := h.uc.DeleteByCategory(r.Context(), category)
	if err != nil {
		log.Printf("[order_handler] purge uc error category=%q err=%v\n", category, err)
		writeDomainErr(w, err)
		return
	}

	log.Printf("[order_handler] purge ok status=200 category=%q deletedOrders=%d updatedOrders=%d deletedItems=%d elapsed=%s\n",
		sum.Category, sum.DeletedOrders, sum.UpdatedOrders, sum.DeletedItems, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": sum,
	})
}

func (h *OrderHandler) handleGrouped(w http.ResponseWriter, r *http.Request, start time.Time) {
	if h.orderQuery == nil {
		writeErr(w, http.StatusInternalServerError, "order_query is not configured")
		return
	}

	// userId is optional here: absent means the all-users view
	userID := readUserID(r, "")

	groups, warnings, err := h.orderQuery.Grouped(r.Context(), userID)
	if err != nil {
		log.Printf("[order_handler] grouped query error userId=%q err=%v\n", userID, err)
		writeDomainErr(w, err)
		return
	}

	for _, wmsg := range warnings {
		log.Printf("[order_handler] grouped warning userId=%q: %s\n", userID, wmsg)
	}

	// map shape per contract; dates carries the calendar-descending order a
	// JSON object cannot
	grouped := make(map[string][]string, len(groups))
	dates := make([]string, 0, len(groups))
	for _, g := range groups {
		grouped[g.Date] = g.Summaries
		dates = append(dates, g.Date)
	}

	log.Printf("[order_handler] grouped ok status=200 userId=%q dates=%d elapsed=%s\n", userID, len(groups), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"groupedOrders": grouped,
		"dates":         dates,
	})
}

func (h *OrderHandler) handleFlat(w http.ResponseWriter, r *http.Request, start time.Time) {
	if h.orderQuery == nil {
		writeErr(w, http.StatusInternalServerError, "order_query is not configured")
		return
	}

	f := query.FlatFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Date:     strings.TrimSpace(r.URL.Query().Get("date")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !orderdom.ValidStatus(n) {
			log.Printf("[order_handler] flat exit status=400 reason=bad status filter status=%q\n", raw)
			writeErr(w, http.StatusBadRequest, "status must be a defined status code")
			return
		}
		f.Status = &n
	}

	records, err := h.orderQuery.FlatList(r.Context(), f)
	if err != nil {
		log.Printf("[order_handler] flat query error err=%v\n", err)
		writeDomainErr(w, err)
		return
	}

	log.Printf("[order_handler] flat ok status=200 records=%d elapsed=%s\n", len(records), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"total":   len(records),
		"orders":  records,
	})
}

func (h *OrderHandler) handleGetOne(w http.ResponseWriter, r *http.Request, orderID string, start time.Time) {
	if h.orderQuery == nil {
		writeErr(w, http.StatusInternalServerError, "order_query is not configured")
		return
	}

	view, warnings, err := h.orderQuery.View(r.Context(), orderID)
	if err != nil {
		log.Printf("[order_handler] get query error orderId=%q err=%v\n", orderID, err)
		writeDomainErr(w, err)
		return
	}

	for _, wmsg := range warnings {
		log.Printf("[order_handler] get warning orderId=%q: %s\n", orderID, wmsg)
	}

	log.Printf("[order_handler] get ok status=200 orderId=%q elapsed=%s\n", orderID, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   view,
	})
}
