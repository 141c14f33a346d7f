package service

import (
	"context"
	"fmt"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/pricing"
	"packbooker-backend/internal/repository"
)

type documentService struct {
	reservations repository.ReservationRepository
	orders       repository.OrderRepository
	renderer     DocumentRenderer
}

func NewDocumentService(reservations repository.ReservationRepository, orders repository.OrderRepository, renderer DocumentRenderer) DocumentService {
	return &documentService{reservations: reservations, orders: orders, renderer: renderer}
}

// BuildInvoice assembles invoice data from the reservation and its paid
// primary order. An invoice only exists once money has actually moved.
func (s *documentService) BuildInvoice(ctx context.Context, reservationID string) (*InvoiceData, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	order, err := s.paidPrimaryOrder(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	items, err := s.reservations.ListItems(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	lines := []InvoiceLine{{
		Label:     fmt.Sprintf("Pack %s", r.PackKey),
		Qty:       1,
		UnitPrice: r.BasePackPrice,
		Total:     r.BasePackPrice,
	}}
	for _, it := range items {
		if !it.IsExtra || it.UnitPrice == nil {
			continue
		}
		lines = append(lines, InvoiceLine{
			Label:     it.Label,
			Qty:       it.Qty,
			UnitPrice: *it.UnitPrice,
			Total:     pricing.Round2(float64(it.Qty) * *it.UnitPrice),
		})
	}

	data := &InvoiceData{
		Number:        fmt.Sprintf("INV-%s", order.ID),
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		EventStart:    r.StartAt,
		EventEnd:      r.EndAt,
		Lines:         lines,
		Total:         r.PriceTotal,
		Deposit:       r.DepositAmount,
		Balance:       r.BalanceAmount,
		IssuedAt:      *order.PaidAt,
	}
	return data, nil
}

// RenderInvoicePDF produces the PDF when a renderer is wired, otherwise
// the caller falls back to serving the raw invoice data.
func (s *documentService) RenderInvoicePDF(ctx context.Context, reservationID string) ([]byte, error) {
	if s.renderer == nil {
		return nil, &domain.ServiceUnavailable{Service: "document renderer"}
	}
	data, err := s.BuildInvoice(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderInvoice(ctx, *data)
}

func (s *documentService) paidPrimaryOrder(ctx context.Context, reservationID string) (*domain.Order, error) {
	orders, err := s.orders.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		o := &orders[i]
		if o.Kind == domain.OrderKindFull && o.Status == domain.OrderStatusPaid && o.PaidAt != nil {
			return o, nil
		}
	}
	return nil, &domain.ConflictError{Reason: "no settled payment to invoice"}
}
