package http

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/service"
)

// AdminHandler serves the operator endpoints, protected by a static
// bearer token.
type AdminHandler struct {
	requests     service.RequestService
	reservations service.ReservationService
	payments     service.PaymentService
	documents    service.DocumentService
	catalog      service.CatalogService
	adminToken   string
}

func NewAdminHandler(
	requests service.RequestService,
	reservations service.ReservationService,
	payments service.PaymentService,
	documents service.DocumentService,
	catalog service.CatalogService,
	adminToken string,
) *AdminHandler {
	return &AdminHandler{
		requests:     requests,
		reservations: reservations,
		payments:     payments,
		documents:    documents,
		catalog:      catalog,
		adminToken:   adminToken,
	}
}

// RequireAuth wraps operator handlers with the bearer token check
func (h *AdminHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}

func paging(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}

type listResponse struct {
	Items any   `json:"items"`
	Total int32 `json:"total"`
}

func (h *AdminHandler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paging(r)
	status := domain.ReservationStatus(r.URL.Query().Get("status"))

	items, total, err := h.requests.List(r.Context(), status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *AdminHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: products, Total: int32(len(products))})
}

func (h *AdminHandler) HandleGetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.requests.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *AdminHandler) HandleApproveRequest(w http.ResponseWriter, r *http.Request) {
	rv, err := h.requests.Approve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type adjustBody struct {
	Items []domain.FinalItem `json:"items"`
}

func (h *AdminHandler) HandleAdjustRequest(w http.ResponseWriter, r *http.Request) {
	var body adjustBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	rv, err := h.requests.Adjust(r.Context(), mux.Vars(r)["id"], body.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type rejectBody struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	var body rejectBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	req, err := h.requests.Reject(r.Context(), mux.Vars(r)["id"], body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *AdminHandler) HandleListReservations(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paging(r)
	status := domain.ReservationStatus(r.URL.Query().Get("status"))

	items, total, err := h.reservations.List(r.Context(), status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (h *AdminHandler) HandleGetReservation(w http.ResponseWriter, r *http.Request) {
	rv, err := h.reservations.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *AdminHandler) HandleAdjustReservation(w http.ResponseWriter, r *http.Request) {
	var body adjustBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	rv, err := h.reservations.Adjust(r.Context(), mux.Vars(r)["id"], body.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type cancelBody struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) HandleCancelReservation(w http.ResponseWriter, r *http.Request) {
	var body cancelBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	rv, estimate, err := h.reservations.Cancel(r.Context(), mux.Vars(r)["id"], body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reservation": rv,
		"refund":      estimate,
	})
}

func (h *AdminHandler) HandleCompleteReservation(w http.ResponseWriter, r *http.Request) {
	rv, err := h.reservations.Complete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

// HandleCreateCheckout lets an operator re-issue a checkout link, e.g.
// when a customer reports the emailed one expired.
func (h *AdminHandler) HandleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.payments.CreateCheckout(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleInvoice serves the invoice PDF when a renderer is configured,
// falling back to the raw invoice data as JSON.
func (h *AdminHandler) HandleInvoice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	pdf, err := h.documents.RenderInvoicePDF(r.Context(), id)
	if err == nil {
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
		return
	}
	if !domain.IsServiceUnavailable(err) {
		writeError(w, err)
		return
	}

	data, err := h.documents.BuildInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
