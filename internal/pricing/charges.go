package pricing

import (
	"math"
	"time"

	"crfms-backend/internal/domain"
)

// Charge rule constants applied at vehicle return.
const (
	LateFeePerHour    = 10.0
	DailyKMAllowance  = 200.0
	OverageFeePerKM   = 0.5
	FuelRefillRate    = 50.0
	ReturnGracePeriod = time.Hour
)

// ChargeInputs carries everything needed to settle a rental at return.
type ChargeInputs struct {
	PickupDate time.Time
	ReturnDate time.Time
	BasePrice  float64
	Pickup     domain.Readings
	Return     domain.Readings
	DamageFee  float64
}

// CalculateCharges itemizes the final cost of a rental. The rental period
// is clamped to at least one billable day.
func CalculateCharges(in ChargeInputs) domain.ChargeBreakdown {
	days := RentalDays(in.PickupDate, in.ReturnDate)
	if days < 1 {
		days = 1
	}

	breakdown := domain.ChargeBreakdown{
		BasePrice: in.BasePrice,
		DamageFee: in.DamageFee,
	}

	// The vehicle is due back the rented number of days after the actual
	// pickup, plus a grace period. Every started hour past grace is charged.
	due := in.Pickup.Timestamp.Add(time.Duration(days) * 24 * time.Hour)
	graceEnd := due.Add(ReturnGracePeriod)
	if in.Return.Timestamp.After(graceEnd) {
		lateHours := math.Ceil(in.Return.Timestamp.Sub(graceEnd).Hours())
		breakdown.LateFee = lateHours * LateFeePerHour
	}

	allowedKM := float64(days) * DailyKMAllowance
	drivenKM := in.Return.Odometer - in.Pickup.Odometer
	if overage := drivenKM - allowedKM; overage > 0 {
		breakdown.DistanceOverageFee = overage * OverageFeePerKM
	}

	// A fuller tank than at pickup is never credited.
	if deficit := in.Pickup.FuelLevel - in.Return.FuelLevel; deficit > 0 {
		breakdown.FuelRefillFee = deficit * FuelRefillRate
	}

	breakdown.Total = breakdown.BasePrice + breakdown.LateFee +
		breakdown.DistanceOverageFee + breakdown.FuelRefillFee + breakdown.DamageFee

	return breakdown
}
