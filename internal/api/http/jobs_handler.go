package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"packbooker-backend/internal/jobs"
)

// JobsHandler exposes the batch jobs for an external scheduler to
// trigger over HTTP, protected by a static bearer token.
type JobsHandler struct {
	runner       *jobs.JobRunner
	triggerToken string
}

func NewJobsHandler(runner *jobs.JobRunner, triggerToken string) *JobsHandler {
	return &JobsHandler{runner: runner, triggerToken: triggerToken}
}

func (h *JobsHandler) authorized(r *http.Request) bool {
	if h.triggerToken == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.triggerToken)) == 1
}

func (h *JobsHandler) run(w http.ResponseWriter, r *http.Request, job func() jobs.Summary) {
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	summary := job()
	status := http.StatusOK
	if summary.Errors > 0 && summary.Sent == 0 && summary.Total == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, summary)
}

func (h *JobsHandler) HandlePaymentReminders(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.runner.SendPaymentReminders)
}

func (h *JobsHandler) HandleBalanceReminders(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.runner.SendBalanceReminders)
}

func (h *JobsHandler) HandleCompleteElapsed(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.runner.CompleteElapsedReservations)
}
