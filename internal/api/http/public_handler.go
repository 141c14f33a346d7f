package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/service"
)

// PublicHandler serves the customer-facing, token-gated endpoints
type PublicHandler struct {
	requests     service.RequestService
	reservations service.ReservationService
	payments     service.PaymentService
}

func NewPublicHandler(requests service.RequestService, reservations service.ReservationService, payments service.PaymentService) *PublicHandler {
	return &PublicHandler{
		requests:     requests,
		reservations: reservations,
		payments:     payments,
	}
}

type submitRequestBody struct {
	PackKey       string             `json:"pack_key"`
	CustomerEmail string             `json:"customer_email"`
	CustomerName  string             `json:"customer_name"`
	StartAt       time.Time          `json:"start_at"`
	EndAt         time.Time          `json:"end_at"`
	Address       string             `json:"address"`
	Message       string             `json:"message"`
	Items         []domain.FinalItem `json:"items"`
}

// HandleSubmitRequest takes a new reservation request from the public
// site form.
func (h *PublicHandler) HandleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	req, err := h.requests.Submit(r.Context(), service.SubmitRequestInput{
		PackKey:       domain.PackKey(body.PackKey),
		CustomerEmail: body.CustomerEmail,
		CustomerName:  body.CustomerName,
		StartAt:       body.StartAt,
		EndAt:         body.EndAt,
		Address:       body.Address,
		Message:       body.Message,
		Items:         body.Items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     req.ID,
		"status": string(req.Status),
	})
}

// HandleTrackingStatus serves the suivi page data. The token travels as
// a query parameter because it arrives from an email link.
func (h *PublicHandler) HandleTrackingStatus(w http.ResponseWriter, r *http.Request) {
	rid := r.URL.Query().Get("rid")
	token := r.URL.Query().Get("token")
	if rid == "" || token == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid or expired link"})
		return
	}

	summary, err := h.reservations.GetPublicStatus(r.Context(), rid, token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleCheckoutRedirect sends the customer from the emailed link
// straight to the provider's hosted payment page.
func (h *PublicHandler) HandleCheckoutRedirect(w http.ResponseWriter, r *http.Request) {
	rid := mux.Vars(r)["reservationId"]
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid or expired link"})
		return
	}

	sess, err := h.payments.CreateCheckoutPublic(r.Context(), rid, token)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, sess.URL, http.StatusFound)
}

// HandleCreateCheckout creates (or replays) the checkout session and
// returns its URL as JSON for clients that navigate themselves.
func (h *PublicHandler) HandleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	rid := mux.Vars(r)["reservationId"]
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid or expired link"})
		return
	}

	sess, err := h.payments.CreateCheckoutPublic(r.Context(), rid, token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleCheckoutConfirm is the provider's return leg. The session and
// payment ids arrive as query parameters on the success redirect.
func (h *PublicHandler) HandleCheckoutConfirm(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("preference_id")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session_id")
	}
	paymentID := r.URL.Query().Get("payment_id")
	if sessionID == "" || paymentID == "" {
		writeError(w, &domain.ValidationError{Field: "query", Reason: "missing session or payment id"})
		return
	}

	result, err := h.payments.Confirm(r.Context(), sessionID, paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type publicCancelBody struct {
	ReservationID string `json:"reservation_id"`
	Token         string `json:"token"`
	Reason        string `json:"reason"`
}

// HandlePublicCancel lets a customer cancel through their tracking link
func (h *PublicHandler) HandlePublicCancel(w http.ResponseWriter, r *http.Request) {
	var body publicCancelBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.ReservationID == "" || body.Token == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid or expired link"})
		return
	}

	rv, estimate, err := h.reservations.CancelPublic(r.Context(), body.ReservationID, body.Token, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": rv.Status,
		"refund": estimate,
	})
}
