package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/pricing"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName, baseURL string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
	}
}

func (s *sendGridEmailService) send(_ context.Context, to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *sendGridEmailService) trackingLink(reservationID, token string) string {
	return fmt.Sprintf("%s/suivi?rid=%s&token=%s", s.baseURL, reservationID, token)
}

func (s *sendGridEmailService) checkoutLink(reservationID, token string) string {
	return fmt.Sprintf("%s/checkout/%s?token=%s", s.baseURL, reservationID, token)
}

func (s *sendGridEmailService) SendRequestReceived(ctx context.Context, req *domain.ReservationRequest, token string) error {
	subject := "Votre demande de réservation a bien été reçue"
	link := fmt.Sprintf("%s/suivi?rid=%s&token=%s", s.baseURL, req.ID, token)
	plain := fmt.Sprintf("Bonjour %s,\n\nNous avons bien reçu votre demande pour le pack %s. Notre équipe la traite sous 48h.\n\nSuivre ma demande : %s",
		req.CustomerName, req.PackKey, link)
	html := fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Nous avons bien reçu votre demande pour le pack <strong>%s</strong>. Notre équipe la traite sous 48h.</p>
<p><a href="%s">Suivre ma demande</a></p>
</body></html>`, req.CustomerName, req.PackKey, link)
	return s.send(ctx, req.CustomerEmail, req.CustomerName, subject, plain, html)
}

func (s *sendGridEmailService) SendRequestRejected(ctx context.Context, req *domain.ReservationRequest, reason string) error {
	subject := "Votre demande de réservation n'a pas pu être acceptée"
	plain := fmt.Sprintf("Bonjour %s,\n\nNous sommes désolés, votre demande pour le pack %s n'a pas pu être acceptée.\nMotif : %s",
		req.CustomerName, req.PackKey, reason)
	html := fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Nous sommes désolés, votre demande pour le pack <strong>%s</strong> n'a pas pu être acceptée.</p>
<p>Motif : %s</p>
</body></html>`, req.CustomerName, req.PackKey, reason)
	return s.send(ctx, req.CustomerEmail, req.CustomerName, subject, plain, html)
}

func (s *sendGridEmailService) SendCheckoutInvitation(ctx context.Context, r *domain.Reservation, token string) error {
	subject := "Votre réservation est validée, passez au règlement"
	link := s.checkoutLink(r.ID, token)
	plain := fmt.Sprintf("Bonjour %s,\n\nVotre réservation du pack %s est validée pour un total de %.2f €.\nRéglez en ligne pour confirmer : %s",
		r.CustomerName, r.PackKey, r.PriceTotal, link)
	html := fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Votre réservation du pack <strong>%s</strong> est validée pour un total de <strong>%.2f €</strong>.</p>
<p><a href="%s">Régler en ligne pour confirmer</a></p>
</body></html>`, r.CustomerName, r.PackKey, r.PriceTotal, link)
	return s.send(ctx, r.CustomerEmail, r.CustomerName, subject, plain, html)
}

func (s *sendGridEmailService) SendPaymentReminder(ctx context.Context, r *domain.Reservation, token string, finalNotice bool) error {
	subject := "Rappel : votre réservation attend votre règlement"
	if finalNotice {
		subject = "Dernier rappel : votre réservation attend votre règlement"
	}
	link := s.checkoutLink(r.ID, token)
	plain := fmt.Sprintf("Bonjour %s,\n\nVotre réservation du pack %s (%.2f €) est toujours en attente de règlement.\nRéglez en ligne : %s",
		r.CustomerName, r.PackKey, r.PriceTotal, link)
	html := fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Votre réservation du pack <strong>%s</strong> (%.2f €) est toujours en attente de règlement.</p>
<p><a href="%s">Régler en ligne</a></p>
</body></html>`, r.CustomerName, r.PackKey, r.PriceTotal, link)
	return s.send(ctx, r.CustomerEmail, r.CustomerName, subject, plain, html)
}

func (s *sendGridEmailService) SendBalanceReminder(ctx context.Context, r *domain.Reservation, token string, finalNotice bool) error {
	subject := "Le solde de votre réservation est à régler"
	if finalNotice {
		subject = "Dernier avis : le solde de votre réservation est à régler"
	}
	link := s.checkoutLink(r.ID, token)
	plain := fmt.Sprintf("Bonjour %s,\n\nLe solde de %.2f € pour votre réservation du pack %s est à régler avant votre événement.\nRégler le solde : %s",
		r.CustomerName, r.BalanceAmount, r.PackKey, link)
	html := fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Le solde de <strong>%.2f €</strong> pour votre réservation du pack <strong>%s</strong> est à régler avant votre événement.</p>
<p><a href="%s">Régler le solde</a></p>
</body></html>`, r.CustomerName, r.BalanceAmount, r.PackKey, link)
	return s.send(ctx, r.CustomerEmail, r.CustomerName, subject, plain, html)
}

func (s *sendGridEmailService) SendDepositReceipt(ctx context.Context, r *domain.Reservation) error {
	subject := "Paiement reçu, votre réservation est confirmée"
	plain := fmt.Sprintf("Bonjour %s,\n\nNous avons bien reçu votre paiement de %.2f €. Votre réservation du pack %s est confirmée.",
		r.CustomerName, r.PriceTotal, r.PackKey)
	html := fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Nous avons bien reçu votre paiement de <strong>%.2f €</strong>. Votre réservation du pack <strong>%s</strong> est confirmée.</p>
</body></html>`, r.CustomerName, r.PriceTotal, r.PackKey)
	return s.send(ctx, r.CustomerEmail, r.CustomerName, subject, plain, html)
}

func (s *sendGridEmailService) SendCancellationNotice(ctx context.Context, r *domain.Reservation, estimate pricing.RefundEstimate) error {
	subject := "Votre réservation a été annulée"
	plain := fmt.Sprintf("Bonjour %s,\n\nVotre réservation du pack %s a été annulée.\nRemboursement applicable : %d %% des sommes versées.",
		r.CustomerName, r.PackKey, estimate.RefundPercentage)
	html := fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Votre réservation du pack <strong>%s</strong> a été annulée.</p>
<p>Remboursement applicable : <strong>%d %%</strong> des sommes versées.</p>
</body></html>`, r.CustomerName, r.PackKey, estimate.RefundPercentage)
	return s.send(ctx, r.CustomerEmail, r.CustomerName, subject, plain, html)
}
