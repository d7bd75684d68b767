package domain

import "time"

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusCompleted RentalStatus = "COMPLETED"
)

// Readings captures the vehicle state at a handover point.
type Readings struct {
	Odometer  float64   `bson:"odometer" json:"odometer"`
	FuelLevel float64   `bson:"fuel_level" json:"fuel_level"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// ChargeBreakdown itemizes the final cost computed at vehicle return.
type ChargeBreakdown struct {
	BasePrice          float64 `bson:"base_price" json:"base_price"`
	LateFee            float64 `bson:"late_fee" json:"late_fee"`
	DistanceOverageFee float64 `bson:"distance_overage_fee" json:"distance_overage_fee"`
	FuelRefillFee      float64 `bson:"fuel_refill_fee" json:"fuel_refill_fee"`
	DamageFee          float64 `bson:"damage_fee" json:"damage_fee"`
	Total              float64 `bson:"total" json:"total"`
}

type Rental struct {
	ID            string `bson:"_id" json:"id"`
	ReservationID string `bson:"reservation_id" json:"reservation_id"`
	VehicleID     string `bson:"vehicle_id" json:"vehicle_id"`
	CustomerID    string `bson:"customer_id" json:"customer_id"`
	AgentID       string `bson:"agent_id" json:"agent_id"`
	// PickupToken is the caller-supplied idempotency key. A unique index
	// on it guarantees at most one rental per pickup attempt.
	PickupToken string           `bson:"pickup_token" json:"pickup_token"`
	Status      RentalStatus     `bson:"status" json:"status"`
	Pickup      Readings         `bson:"pickup" json:"pickup"`
	Return      *Readings        `bson:"return,omitempty" json:"return,omitempty"`
	Charges     *ChargeBreakdown `bson:"charges,omitempty" json:"charges,omitempty"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at" json:"updated_at"`
}
