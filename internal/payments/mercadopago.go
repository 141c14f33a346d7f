package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/logger"
	"packbooker-backend/internal/service"
)

// MercadoPagoGateway creates hosted checkout sessions through the
// Checkout Pro preference API and verifies captured payments.
type MercadoPagoGateway struct {
	preferences preference.Client
	payments    payment.Client
	mockMode    bool
}

var _ service.PaymentGateway = (*MercadoPagoGateway)(nil)

// NewMercadoPagoGateway builds the gateway. A missing access token is a
// ServiceUnavailable so callers surface a clean 503 instead of a
// provider error mid-checkout.
func NewMercadoPagoGateway(accessToken string, mock bool) (*MercadoPagoGateway, error) {
	if mock {
		logger.Warn("payment gateway running in mock mode")
		return &MercadoPagoGateway{mockMode: true}, nil
	}

	if accessToken == "" {
		return nil, &domain.ServiceUnavailable{Service: "payment provider"}
	}

	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "mercadopago", Err: err}
	}

	return &MercadoPagoGateway{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
	}, nil
}

func (g *MercadoPagoGateway) CreateSession(ctx context.Context, req service.SessionRequest) (*service.Session, error) {
	if g.mockMode {
		id := "mock-" + uuid.NewString()
		logger.Debug("mock checkout session created", "session_id", id, "reference", req.Reference)
		return &service.Session{ID: id, URL: req.SuccessURL}, nil
	}

	items := buildItems(req.Lines, req.Currency)

	logger.ExternalServiceCall("mercadopago", "preference.create", "reference", req.Reference, "lines", len(items))
	resp, err := g.preferences.Create(ctx, preference.Request{
		Items:             items,
		ExternalReference: req.Reference,
		Metadata:          req.Metadata,
		AutoReturn:        "approved",
		BackURLs: &preference.BackURLsRequest{
			Success: req.SuccessURL,
			Pending: req.SuccessURL,
			Failure: req.CancelURL,
		},
	})
	logger.ExternalServiceResult("mercadopago", "preference.create", err)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "mercadopago", Err: err}
	}

	return &service.Session{ID: resp.ID, URL: resp.InitPoint}, nil
}

func buildItems(lines []service.SessionLine, currency string) []preference.ItemRequest {
	items := make([]preference.ItemRequest, 0, len(lines))
	for _, line := range lines {
		items = append(items, preference.ItemRequest{
			Title:      line.Title,
			Quantity:   line.Qty,
			UnitPrice:  line.UnitPrice,
			CurrencyID: currency,
		})
	}
	return items
}

func (g *MercadoPagoGateway) PaymentStatus(ctx context.Context, providerPaymentID string) (*service.ProviderPayment, error) {
	if g.mockMode {
		return &service.ProviderPayment{ID: providerPaymentID, Status: "approved"}, nil
	}

	id, err := strconv.Atoi(providerPaymentID)
	if err != nil {
		return nil, &domain.ValidationError{Field: "payment_id", Reason: fmt.Sprintf("not a provider payment id: %q", providerPaymentID)}
	}

	logger.ExternalServiceCall("mercadopago", "payment.get", "payment_id", providerPaymentID)
	resp, err := g.payments.Get(ctx, id)
	logger.ExternalServiceResult("mercadopago", "payment.get", err)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "mercadopago", Err: err}
	}

	return &service.ProviderPayment{
		ID:        strconv.FormatInt(int64(resp.ID), 10),
		Status:    resp.Status,
		Amount:    resp.TransactionAmount,
		Reference: resp.ExternalReference,
	}, nil
}
