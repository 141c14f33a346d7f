package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/security"
)

func fixedToken() security.PublicToken {
	return security.PublicToken{
		Plaintext: "plain-token",
		Hash:      security.HashToken("plain-token"),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
}

func newRequestServiceForTest(requests *MockRequestRepo, reservations *MockReservationRepo, emailSvc *MockEmailService) RequestService {
	return NewRequestService(requests, reservations, &stubTokenIssuer{token: fixedToken()}, emailSvc, 0.30)
}

func TestRequestService_Submit(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(30 * 24 * time.Hour)
	end := start.Add(24 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		requests := new(MockRequestRepo)
		reservations := new(MockReservationRepo)
		emailSvc := new(MockEmailService)
		svc := newRequestServiceForTest(requests, reservations, emailSvc)

		requests.On("Create", ctx, mock.AnythingOfType("*domain.ReservationRequest")).Return(nil)
		emailSvc.On("SendRequestReceived", ctx, mock.AnythingOfType("*domain.ReservationRequest"), "plain-token").Return(nil)

		req, err := svc.Submit(ctx, SubmitRequestInput{
			PackKey:       domain.PackConference,
			CustomerEmail: "client@test.com",
			CustomerName:  "Client",
			StartAt:       start,
			EndAt:         end,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusPendingReview, req.Status)
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, security.HashToken("plain-token"), req.PublicTokenHash)
		emailSvc.AssertExpectations(t)
	})

	t.Run("Unknown pack", func(t *testing.T) {
		svc := newRequestServiceForTest(new(MockRequestRepo), new(MockReservationRepo), new(MockEmailService))

		_, err := svc.Submit(ctx, SubmitRequestInput{
			PackKey:       "weekend",
			CustomerEmail: "client@test.com",
			StartAt:       start,
			EndAt:         end,
		})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("End before start", func(t *testing.T) {
		svc := newRequestServiceForTest(new(MockRequestRepo), new(MockReservationRepo), new(MockEmailService))

		_, err := svc.Submit(ctx, SubmitRequestInput{
			PackKey:       domain.PackSoiree,
			CustomerEmail: "client@test.com",
			StartAt:       end,
			EndAt:         start,
		})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Email failure does not fail submission", func(t *testing.T) {
		requests := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := newRequestServiceForTest(requests, new(MockReservationRepo), emailSvc)

		requests.On("Create", ctx, mock.AnythingOfType("*domain.ReservationRequest")).Return(nil)
		emailSvc.On("SendRequestReceived", ctx, mock.Anything, "plain-token").Return(assert.AnError)

		req, err := svc.Submit(ctx, SubmitRequestInput{
			PackKey:       domain.PackMariage,
			CustomerEmail: "client@test.com",
			StartAt:       start,
			EndAt:         end,
		})
		assert.NoError(t, err)
		assert.NotNil(t, req)
	})
}

func TestRequestService_Approve(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(30 * 24 * time.Hour)
	end := start.Add(24 * time.Hour)

	pending := func() *domain.ReservationRequest {
		return &domain.ReservationRequest{
			ID:            "req-1",
			PackKey:       domain.PackMariage,
			CustomerEmail: "client@test.com",
			CustomerName:  "Client",
			StartAt:       start,
			EndAt:         end,
			Status:        domain.StatusPendingReview,
		}
	}

	t.Run("Materializes awaiting payment", func(t *testing.T) {
		requests := new(MockRequestRepo)
		reservations := new(MockReservationRepo)
		emailSvc := new(MockEmailService)
		svc := newRequestServiceForTest(requests, reservations, emailSvc)

		req := pending()
		requests.On("GetByID", ctx, "req-1").Return(req, nil)
		requests.On("ListItems", ctx, "req-1").Return([]domain.FinalItem(nil), nil)
		reservations.On("Create", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil)
		reservations.On("ReplaceItems", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		requests.On("Update", ctx, req).Return(nil)
		emailSvc.On("SendCheckoutInvitation", ctx, mock.AnythingOfType("*domain.Reservation"), "plain-token").Return(nil)

		rv, err := svc.Approve(ctx, "req-1")
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusAwaitingPayment, rv.Status)
		assert.Equal(t, 450.0, rv.PriceTotal)
		assert.Equal(t, 135.0, rv.DepositAmount)
		assert.Equal(t, 315.0, rv.BalanceAmount)
		assert.Equal(t, domain.StatusApproved, req.Status)
		assert.Equal(t, &rv.ID, req.ReservationID)
		emailSvc.AssertExpectations(t)
	})

	t.Run("Rejected request cannot be approved", func(t *testing.T) {
		requests := new(MockRequestRepo)
		svc := newRequestServiceForTest(requests, new(MockReservationRepo), new(MockEmailService))

		req := pending()
		req.Status = domain.StatusRejected
		requests.On("GetByID", ctx, "req-1").Return(req, nil)
		requests.On("ListItems", ctx, "req-1").Return([]domain.FinalItem(nil), nil)

		_, err := svc.Approve(ctx, "req-1")
		assert.True(t, domain.IsConflict(err))
	})
}

func TestRequestService_Adjust(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(20 * 24 * time.Hour)
	end := start.Add(24 * time.Hour)

	requests := new(MockRequestRepo)
	reservations := new(MockReservationRepo)
	emailSvc := new(MockEmailService)
	svc := newRequestServiceForTest(requests, reservations, emailSvc)

	req := &domain.ReservationRequest{
		ID:            "req-2",
		PackKey:       domain.PackConference,
		CustomerEmail: "client@test.com",
		StartAt:       start,
		EndAt:         end,
		Status:        domain.StatusPendingReview,
	}
	price := 40.0
	items := []domain.FinalItem{
		{Label: "Vidéoprojecteur", Qty: 1, UnitPrice: &price, IsExtra: true},
	}

	requests.On("GetByID", ctx, "req-2").Return(req, nil)
	requests.On("ReplaceItems", ctx, "req-2", mock.Anything).Return(nil)
	reservations.On("Create", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil)
	reservations.On("ReplaceItems", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	requests.On("Update", ctx, req).Return(nil)
	emailSvc.On("SendCheckoutInvitation", ctx, mock.Anything, "plain-token").Return(nil)

	rv, err := svc.Adjust(ctx, "req-2", items)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusAdjusted, req.Status)
	assert.Equal(t, 300.0, rv.BasePackPrice)
	assert.Equal(t, 40.0, rv.ExtrasTotal)
	assert.Equal(t, 340.0, rv.PriceTotal)
	// Items get ids assigned before persisting
	for _, it := range rv.FinalItems {
		assert.NotEmpty(t, it.ID)
	}
}

func TestRequestService_Reject(t *testing.T) {
	ctx := context.Background()

	requests := new(MockRequestRepo)
	emailSvc := new(MockEmailService)
	svc := newRequestServiceForTest(requests, new(MockReservationRepo), emailSvc)

	req := &domain.ReservationRequest{ID: "req-3", Status: domain.StatusPendingReview, CustomerEmail: "client@test.com"}
	requests.On("GetByID", ctx, "req-3").Return(req, nil)
	requests.On("Update", ctx, req).Return(nil)
	emailSvc.On("SendRequestRejected", ctx, req, "indisponible").Return(nil)

	out, err := svc.Reject(ctx, "req-3", "indisponible")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, out.Status)
	assert.Equal(t, "indisponible", out.RejectionReason)

	// A second reject is a conflict
	_, err = svc.Reject(ctx, "req-3", "again")
	assert.True(t, domain.IsConflict(err))
}
