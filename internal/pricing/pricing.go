// Package pricing implements the quoting rules applied at reservation
// time and the charge rules applied at vehicle return.
package pricing

import (
	"time"

	"crfms-backend/internal/domain"
)

// Strategy identifies which discount applies to a reservation.
type Strategy string

const (
	StrategyFirstOrder Strategy = "FIRST_ORDER"
	StrategyLoyalty    Strategy = "LOYALTY"
	StrategyDaily      Strategy = "DAILY"
)

// DiscountRate returns the fraction taken off the base price.
func (s Strategy) DiscountRate() float64 {
	switch s {
	case StrategyFirstOrder:
		return 0.15
	case StrategyLoyalty:
		return 0.10
	default:
		return 0
	}
}

// RentalDays returns the number of billable days between pickup and return.
// Dates are calendar dates at midnight UTC; a Monday pickup returned
// Thursday is three days.
func RentalDays(pickupDate, returnDate time.Time) int {
	return int(returnDate.Sub(pickupDate) / (24 * time.Hour))
}

// SelectStrategy picks the discount for a customer's next reservation from
// how many reservations they already have. The first reservation earns the
// first-order discount, every fifth earns the loyalty discount, everything
// else pays the daily rate. First-order wins when both would match.
func SelectStrategy(priorReservations int) Strategy {
	if priorReservations == 0 {
		return StrategyFirstOrder
	}
	if (priorReservations+1)%5 == 0 {
		return StrategyLoyalty
	}
	return StrategyDaily
}

// BasePrice computes the undiscounted price for the rental period. Vehicle,
// insurance and add-on rates are all per day.
func BasePrice(vehicleRate, insuranceRate float64, addOns []domain.AddOnSnapshot, days int) float64 {
	daily := vehicleRate + insuranceRate
	for _, a := range addOns {
		daily += a.PricePerDay
	}
	return daily * float64(days)
}

// ApplyDiscount reduces base by the strategy's rate.
func ApplyDiscount(base float64, strategy Strategy) float64 {
	return base * (1 - strategy.DiscountRate())
}

// Quote computes the final reservation price, the billable days and the
// strategy that was applied.
func Quote(vehicleRate, insuranceRate float64, addOns []domain.AddOnSnapshot, pickupDate, returnDate time.Time, priorReservations int) (float64, int, Strategy) {
	days := RentalDays(pickupDate, returnDate)
	base := BasePrice(vehicleRate, insuranceRate, addOns, days)
	strategy := SelectStrategy(priorReservations)
	return ApplyDiscount(base, strategy), days, strategy
}
