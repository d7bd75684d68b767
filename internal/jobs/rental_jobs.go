package jobs

import (
	"context"
	"math"
	"time"

	"crfms-backend/internal/domain"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/pricing"
)

// DetectOverdueRentals flags active rentals whose vehicle is still out past
// the agreed return time plus the grace period. Flagged rentals stay ACTIVE;
// late fees are settled at the counter when the vehicle comes back.
func (jr *JobRunner) DetectOverdueRentals() {
	jr.runWithRecovery("DetectOverdueRentals", func() {
		ctx := context.Background()

		rentals, err := jr.rentalRepo.ListByStatus(ctx, domain.RentalStatusActive)
		if err != nil {
			logger.Error("Failed to list active rentals", "error", err)
			return
		}

		now := jr.clock.Now()
		flagged := 0
		for _, rental := range rentals {
			reservation, err := jr.reservationRepo.GetByID(ctx, rental.ReservationID)
			if err != nil {
				logger.Error("Failed to load reservation for rental",
					"rental_id", rental.ID, "reservation_id", rental.ReservationID, "error", err)
				continue
			}

			days := reservation.RentalDays
			if days < 1 {
				days = 1
			}
			due := rental.Pickup.Timestamp.Add(time.Duration(days) * 24 * time.Hour)
			graceEnd := due.Add(pricing.ReturnGracePeriod)
			if !now.After(graceEnd) {
				continue
			}

			hoursOverdue := math.Ceil(now.Sub(graceEnd).Hours())
			logger.Warn("Rental overdue",
				"rental_id", rental.ID,
				"vehicle_id", rental.VehicleID,
				"customer_id", rental.CustomerID,
				"due", due.Format(time.RFC3339),
				"hours_overdue", hoursOverdue)

			if err := jr.publisher.Publish(ctx, domain.EventOverdueReturnDetected, map[string]any{
				"rental_id":     rental.ID,
				"vehicle_id":    rental.VehicleID,
				"customer_id":   rental.CustomerID,
				"due":           due.Format(time.RFC3339),
				"hours_overdue": hoursOverdue,
			}); err != nil {
				logger.Error("Failed to publish overdue event", "rental_id", rental.ID, "error", err)
			}
			flagged++
		}

		logger.Info("Scanned active rentals for overdue returns",
			"active", len(rentals), "overdue", flagged)
	})
}
