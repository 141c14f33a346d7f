package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires all HTTP endpoints
func NewRouter(public *PublicHandler, admin *AdminHandler, jobsH *JobsHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Customer surface, token-gated
	r.HandleFunc("/requests", public.HandleSubmitRequest).Methods("POST")
	r.HandleFunc("/suivi", public.HandleTrackingStatus).Methods("GET")
	r.HandleFunc("/suivi/cancel", public.HandlePublicCancel).Methods("POST")
	r.HandleFunc("/checkout/confirm", public.HandleCheckoutConfirm).Methods("GET")
	r.HandleFunc("/checkout/{reservationId}", public.HandleCheckoutRedirect).Methods("GET")
	r.HandleFunc("/checkout/{reservationId}", public.HandleCreateCheckout).Methods("POST")

	// Batch job triggers
	r.HandleFunc("/jobs/payment-reminders", jobsH.HandlePaymentReminders).Methods("POST")
	r.HandleFunc("/jobs/balance-reminders", jobsH.HandleBalanceReminders).Methods("POST")
	r.HandleFunc("/jobs/complete-elapsed", jobsH.HandleCompleteElapsed).Methods("POST")

	// Operator surface
	a := r.PathPrefix("/admin").Subrouter()
	a.HandleFunc("/products", admin.RequireAuth(admin.HandleListProducts)).Methods("GET")
	a.HandleFunc("/requests", admin.RequireAuth(admin.HandleListRequests)).Methods("GET")
	a.HandleFunc("/requests/{id}", admin.RequireAuth(admin.HandleGetRequest)).Methods("GET")
	a.HandleFunc("/requests/{id}/approve", admin.RequireAuth(admin.HandleApproveRequest)).Methods("POST")
	a.HandleFunc("/requests/{id}/adjust", admin.RequireAuth(admin.HandleAdjustRequest)).Methods("POST")
	a.HandleFunc("/requests/{id}/reject", admin.RequireAuth(admin.HandleRejectRequest)).Methods("POST")

	a.HandleFunc("/reservations", admin.RequireAuth(admin.HandleListReservations)).Methods("GET")
	a.HandleFunc("/reservations/{id}", admin.RequireAuth(admin.HandleGetReservation)).Methods("GET")
	a.HandleFunc("/reservations/{id}/adjust", admin.RequireAuth(admin.HandleAdjustReservation)).Methods("POST")
	a.HandleFunc("/reservations/{id}/cancel", admin.RequireAuth(admin.HandleCancelReservation)).Methods("POST")
	a.HandleFunc("/reservations/{id}/complete", admin.RequireAuth(admin.HandleCompleteReservation)).Methods("POST")
	a.HandleFunc("/reservations/{id}/checkout", admin.RequireAuth(admin.HandleCreateCheckout)).Methods("POST")
	a.HandleFunc("/reservations/{id}/invoice", admin.RequireAuth(admin.HandleInvoice)).Methods("GET")

	return r
}
