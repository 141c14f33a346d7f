package jobs

import (
	"context"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/logger"
)

// CompleteElapsedReservations closes out fully paid reservations whose
// rental period has ended.
func (jr *JobRunner) CompleteElapsedReservations() Summary {
	return jr.runWithRecovery("CompleteElapsedReservations", func() Summary {
		ctx := context.Background()
		now := jr.now()

		candidates, err := jr.reservations.ListElapsedConfirmed(ctx, now)
		if err != nil {
			logger.Error("Failed to list elapsed reservations", "error", err)
			return Summary{Errors: 1}
		}

		summary := Summary{Total: len(candidates)}
		for i := range candidates {
			r := &candidates[i]

			if !r.FullyPaid() {
				// An elapsed reservation with money outstanding needs a
				// human decision, not an automatic close.
				logger.Warn("Elapsed reservation not fully paid, leaving open",
					"reservation_id", r.ID, "balance_amount", r.BalanceAmount)
				continue
			}
			if err := domain.CheckTransition(r.Status, domain.StatusCompleted); err != nil {
				logger.Error("Elapsed reservation in unexpected status",
					"reservation_id", r.ID, "status", r.Status, "error", err)
				summary.Errors++
				continue
			}

			r.Status = domain.StatusCompleted
			if err := jr.reservations.Update(ctx, r); err != nil {
				logger.Warn("Failed to complete reservation", "reservation_id", r.ID, "error", err)
				summary.Errors++
				continue
			}

			summary.Sent++
			logger.Debug("Completed reservation", "reservation_id", r.ID)
		}

		return summary
	})
}
