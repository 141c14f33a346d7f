package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/pricing"
	"packbooker-backend/internal/security"
)

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) Update(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReservationRepo) List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ReplaceItems(ctx context.Context, reservationID string, items []domain.FinalItem) error {
	args := m.Called(ctx, reservationID, items)
	return args.Error(0)
}
func (m *MockReservationRepo) ListItems(ctx context.Context, reservationID string) ([]domain.FinalItem, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinalItem), args.Error(1)
}
func (m *MockReservationRepo) ListPaymentReminderCandidates(ctx context.Context, now time.Time, firstDelay, repeatDelay time.Duration, maxReminders int) ([]domain.Reservation, error) {
	args := m.Called(ctx, now, firstDelay, repeatDelay, maxReminders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListBalanceReminderCandidates(ctx context.Context, now time.Time, maxReminders int) ([]domain.Reservation, error) {
	args := m.Called(ctx, now, maxReminders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListElapsedConfirmed(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ClaimPaymentReminder(ctx context.Context, id string, seenCount int, tokenHash string, expiresAt, now time.Time) (bool, error) {
	args := m.Called(ctx, id, seenCount, tokenHash, expiresAt, now)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) ClaimBalanceReminder(ctx context.Context, id string, seenCount int, tokenHash string, expiresAt, now time.Time) (bool, error) {
	args := m.Called(ctx, id, seenCount, tokenHash, expiresAt, now)
	return args.Bool(0), args.Error(1)
}

// MockRequestRepo
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Create(ctx context.Context, req *domain.ReservationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) GetByID(ctx context.Context, id string) (*domain.ReservationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationRequest), args.Error(1)
}
func (m *MockRequestRepo) Update(ctx context.Context, req *domain.ReservationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.ReservationRequest, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.ReservationRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRequestRepo) ReplaceItems(ctx context.Context, requestID string, items []domain.FinalItem) error {
	args := m.Called(ctx, requestID, items)
	return args.Error(0)
}
func (m *MockRequestRepo) ListItems(ctx context.Context, requestID string) ([]domain.FinalItem, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinalItem), args.Error(1)
}

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderRepo) MarkPaid(ctx context.Context, id, providerPaymentID string, paidAt time.Time) error {
	args := m.Called(ctx, id, providerPaymentID, paidAt)
	return args.Error(0)
}
func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockOrderRepo) ListByReservation(ctx context.Context, reservationID string) ([]domain.Order, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

// MockProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockProductRepo) ListActive(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}
func (m *MockGateway) PaymentStatus(ctx context.Context, providerPaymentID string) (*ProviderPayment, error) {
	args := m.Called(ctx, providerPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderPayment), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRequestReceived(ctx context.Context, req *domain.ReservationRequest, token string) error {
	args := m.Called(ctx, req, token)
	return args.Error(0)
}
func (m *MockEmailService) SendRequestRejected(ctx context.Context, req *domain.ReservationRequest, reason string) error {
	args := m.Called(ctx, req, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendCheckoutInvitation(ctx context.Context, r *domain.Reservation, token string) error {
	args := m.Called(ctx, r, token)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentReminder(ctx context.Context, r *domain.Reservation, token string, finalNotice bool) error {
	args := m.Called(ctx, r, token, finalNotice)
	return args.Error(0)
}
func (m *MockEmailService) SendBalanceReminder(ctx context.Context, r *domain.Reservation, token string, finalNotice bool) error {
	args := m.Called(ctx, r, token, finalNotice)
	return args.Error(0)
}
func (m *MockEmailService) SendDepositReceipt(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockEmailService) SendCancellationNotice(ctx context.Context, r *domain.Reservation, estimate pricing.RefundEstimate) error {
	args := m.Called(ctx, r, estimate)
	return args.Error(0)
}

// stubTokenIssuer returns a fixed token so assertions can follow the
// plaintext through emails and the hash through claims.
type stubTokenIssuer struct {
	token security.PublicToken
	err   error
}

func (s *stubTokenIssuer) Generate() (security.PublicToken, error) {
	return s.token, s.err
}
