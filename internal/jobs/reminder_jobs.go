package jobs

import (
	"context"
	"time"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/logger"
)

// SendPaymentReminders emails customers whose reservation still awaits
// its first payment. Each send is claimed first: the claim rotates the
// public token and bumps the counter in one conditional write, so a
// concurrent or replayed run can never push a customer past the cap.
func (jr *JobRunner) SendPaymentReminders() Summary {
	return jr.runWithRecovery("SendPaymentReminders", func() Summary {
		ctx := context.Background()
		now := jr.now()

		candidates, err := jr.reservations.ListPaymentReminderCandidates(ctx, now,
			time.Duration(jr.config.Booking.FirstReminderDelayHrs)*time.Hour,
			time.Duration(jr.config.Booking.RepeatReminderDelayHrs)*time.Hour,
			jr.config.Booking.MaxReminders)
		if err != nil {
			logger.Error("Failed to list payment reminder candidates", "error", err)
			return Summary{Errors: 1}
		}

		summary := Summary{Total: len(candidates)}
		for i := range candidates {
			r := &candidates[i]

			tok, err := jr.tokens.Generate()
			if err != nil {
				logger.Error("Failed to generate reminder token", "reservation_id", r.ID, "error", err)
				summary.Errors++
				continue
			}

			claimed, err := jr.reservations.ClaimPaymentReminder(ctx, r.ID, r.ReminderCount, tok.Hash, tok.ExpiresAt, now)
			if err != nil {
				logger.Error("Failed to claim payment reminder", "reservation_id", r.ID, "error", err)
				summary.Errors++
				continue
			}
			if !claimed {
				// Another run got here first, or the reservation moved on.
				logger.Debug("Payment reminder already claimed", "reservation_id", r.ID)
				continue
			}

			finalNotice := r.ReminderCount+1 >= jr.config.Booking.MaxReminders
			if err := jr.emailSvc.SendPaymentReminder(ctx, r, tok.Plaintext, finalNotice); err != nil {
				logger.Error("Failed to send payment reminder",
					"reservation_id", r.ID,
					"email", r.CustomerEmail,
					"error", err)
				summary.Errors++
				continue
			}

			summary.Sent++
			logger.Debug("Sent payment reminder",
				"reservation_id", r.ID,
				"reminder_count", r.ReminderCount+1,
				"email", r.CustomerEmail)
		}

		return summary
	})
}

// SendBalanceReminders emails customers whose balance has come due. A
// confirmed reservation is moved to AWAITING_BALANCE before its first
// reminder goes out; the second reminder is the final notice.
func (jr *JobRunner) SendBalanceReminders() Summary {
	return jr.runWithRecovery("SendBalanceReminders", func() Summary {
		ctx := context.Background()
		now := jr.now()

		candidates, err := jr.reservations.ListBalanceReminderCandidates(ctx, now, jr.config.Booking.MaxReminders)
		if err != nil {
			logger.Error("Failed to list balance reminder candidates", "error", err)
			return Summary{Errors: 1}
		}

		summary := Summary{Total: len(candidates)}
		for i := range candidates {
			r := &candidates[i]

			if r.Status == domain.StatusConfirmed {
				if err := domain.CheckTransition(r.Status, domain.StatusAwaitingBalance); err != nil {
					logger.Error("Balance reminder candidate in unexpected status",
						"reservation_id", r.ID, "status", r.Status, "error", err)
					summary.Errors++
					continue
				}
				r.Status = domain.StatusAwaitingBalance
				if err := jr.reservations.Update(ctx, r); err != nil {
					// A concurrent writer moved the row; skip this cycle.
					logger.Warn("Failed to move reservation to awaiting balance",
						"reservation_id", r.ID, "error", err)
					summary.Errors++
					continue
				}
			}

			tok, err := jr.tokens.Generate()
			if err != nil {
				logger.Error("Failed to generate reminder token", "reservation_id", r.ID, "error", err)
				summary.Errors++
				continue
			}

			claimed, err := jr.reservations.ClaimBalanceReminder(ctx, r.ID, r.BalanceReminderCount, tok.Hash, tok.ExpiresAt, now)
			if err != nil {
				logger.Error("Failed to claim balance reminder", "reservation_id", r.ID, "error", err)
				summary.Errors++
				continue
			}
			if !claimed {
				logger.Debug("Balance reminder already claimed", "reservation_id", r.ID)
				continue
			}

			finalNotice := r.BalanceReminderCount+1 >= jr.config.Booking.MaxReminders
			if err := jr.emailSvc.SendBalanceReminder(ctx, r, tok.Plaintext, finalNotice); err != nil {
				logger.Error("Failed to send balance reminder",
					"reservation_id", r.ID,
					"email", r.CustomerEmail,
					"error", err)
				summary.Errors++
				continue
			}

			summary.Sent++
			logger.Debug("Sent balance reminder",
				"reservation_id", r.ID,
				"balance_reminder_count", r.BalanceReminderCount+1,
				"final_notice", finalNotice,
				"email", r.CustomerEmail)
		}

		return summary
	})
}
