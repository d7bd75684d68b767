package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crfms-backend/internal/domain"
)

// threeDayRental returns inputs for a 3-day rental picked up on time with
// no overage of any kind.
func threeDayRental() ChargeInputs {
	pickupAt := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	return ChargeInputs{
		PickupDate: date(2026, time.March, 2),
		ReturnDate: date(2026, time.March, 5),
		BasePrice:  204.0,
		Pickup:     domain.Readings{Odometer: 10000, FuelLevel: 0.8, Timestamp: pickupAt},
		Return:     domain.Readings{Odometer: 10300, FuelLevel: 0.8, Timestamp: pickupAt.Add(72 * time.Hour)},
	}
}

func TestCalculateChargesLateFee(t *testing.T) {
	t.Run("On Time", func(t *testing.T) {
		breakdown := CalculateCharges(threeDayRental())
		assert.InDelta(t, 0.0, breakdown.LateFee, 0.0001)
		assert.InDelta(t, 204.0, breakdown.Total, 0.0001)
	})

	t.Run("Within Grace Period", func(t *testing.T) {
		in := threeDayRental()
		// 50 minutes past the due time is still inside the 1h grace
		in.Return.Timestamp = in.Pickup.Timestamp.Add(72*time.Hour + 50*time.Minute)
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 0.0, breakdown.LateFee, 0.0001)
	})

	t.Run("Exactly At Grace End", func(t *testing.T) {
		in := threeDayRental()
		in.Return.Timestamp = in.Pickup.Timestamp.Add(73 * time.Hour)
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 0.0, breakdown.LateFee, 0.0001)
	})

	t.Run("Partial Hours Round Up", func(t *testing.T) {
		in := threeDayRental()
		// 61 minutes past grace rounds up to 2 started hours = $20
		in.Return.Timestamp = in.Pickup.Timestamp.Add(73*time.Hour + 61*time.Minute)
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 20.0, breakdown.LateFee, 0.0001)
	})

	t.Run("One Minute Past Grace", func(t *testing.T) {
		in := threeDayRental()
		// any time past grace starts the first charged hour = $10
		in.Return.Timestamp = in.Pickup.Timestamp.Add(73*time.Hour + time.Minute)
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 10.0, breakdown.LateFee, 0.0001)
	})
}

func TestCalculateChargesDistanceOverage(t *testing.T) {
	t.Run("Under Allowance", func(t *testing.T) {
		in := threeDayRental()
		// 300 km over 3 days is well under the 600 km allowance
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 0.0, breakdown.DistanceOverageFee, 0.0001)
	})

	t.Run("Over Allowance", func(t *testing.T) {
		in := threeDayRental()
		// 700 km driven, 600 km allowed: 100 km * $0.50 = $50
		in.Return.Odometer = in.Pickup.Odometer + 700
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 50.0, breakdown.DistanceOverageFee, 0.0001)
	})

	t.Run("Exactly At Allowance", func(t *testing.T) {
		in := threeDayRental()
		in.Return.Odometer = in.Pickup.Odometer + 600
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 0.0, breakdown.DistanceOverageFee, 0.0001)
	})
}

func TestCalculateChargesFuel(t *testing.T) {
	t.Run("Returned Emptier", func(t *testing.T) {
		in := threeDayRental()
		// 0.8 at pickup, 0.5 at return: 0.3 * $50 = $15
		in.Return.FuelLevel = 0.5
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 15.0, breakdown.FuelRefillFee, 0.0001)
	})

	t.Run("Returned Fuller", func(t *testing.T) {
		in := threeDayRental()
		in.Return.FuelLevel = 1.0
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 0.0, breakdown.FuelRefillFee, 0.0001)
	})
}

func TestCalculateChargesTotal(t *testing.T) {
	t.Run("All Components Sum", func(t *testing.T) {
		in := threeDayRental()
		in.Return.Timestamp = in.Pickup.Timestamp.Add(73*time.Hour + 61*time.Minute)
		in.Return.Odometer = in.Pickup.Odometer + 700
		in.Return.FuelLevel = 0.5
		in.DamageFee = 120.0

		breakdown := CalculateCharges(in)

		// $204 base + $20 late + $50 overage + $15 fuel + $120 damage = $409
		assert.InDelta(t, 20.0, breakdown.LateFee, 0.0001)
		assert.InDelta(t, 50.0, breakdown.DistanceOverageFee, 0.0001)
		assert.InDelta(t, 15.0, breakdown.FuelRefillFee, 0.0001)
		assert.InDelta(t, 120.0, breakdown.DamageFee, 0.0001)
		assert.InDelta(t, 409.0, breakdown.Total, 0.0001)
	})

	t.Run("Minimum One Billable Day", func(t *testing.T) {
		in := threeDayRental()
		// same-day rental still gets a 1-day allowance and due time
		in.ReturnDate = in.PickupDate
		in.Return.Timestamp = in.Pickup.Timestamp.Add(20 * time.Hour)
		in.Return.Odometer = in.Pickup.Odometer + 150
		breakdown := CalculateCharges(in)
		assert.InDelta(t, 0.0, breakdown.LateFee, 0.0001)
		assert.InDelta(t, 0.0, breakdown.DistanceOverageFee, 0.0001)
	})
}
