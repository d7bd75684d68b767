package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusApproved  ReservationStatus = "APPROVED"
	ReservationStatusPickedUp  ReservationStatus = "PICKED_UP"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusCompleted InvoiceStatus = "COMPLETED"
	InvoiceStatusFailed    InvoiceStatus = "FAILED"
)

// AddOnSnapshot is an add-on price captured at reservation time.
// Later catalog price changes never affect an existing reservation.
type AddOnSnapshot struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	PricePerDay float64 `bson:"price_per_day" json:"price_per_day"`
}

// Invoice is embedded in its reservation. Invoice.TotalPrice always
// equals Reservation.TotalPrice; every price recalculation writes both.
type Invoice struct {
	ID         string        `bson:"id" json:"id"`
	Status     InvoiceStatus `bson:"status" json:"status"`
	IssuedDate time.Time     `bson:"issued_date" json:"issued_date"`
	TotalPrice float64       `bson:"total_price" json:"total_price"`
}

type Reservation struct {
	ID              string            `bson:"_id" json:"id"`
	CustomerID      string            `bson:"customer_id" json:"customer_id"`
	VehicleID       string            `bson:"vehicle_id" json:"vehicle_id"`
	InsuranceTierID string            `bson:"insurance_tier_id" json:"insurance_tier_id"`
	PickupBranchID  string            `bson:"pickup_branch_id" json:"pickup_branch_id"`
	ReturnBranchID  string            `bson:"return_branch_id" json:"return_branch_id"`
	PickupDate      time.Time         `bson:"pickup_date" json:"pickup_date"`
	ReturnDate      time.Time         `bson:"return_date" json:"return_date"`
	AddOns          []AddOnSnapshot   `bson:"add_ons" json:"add_ons"`
	RentalDays      int               `bson:"rental_days" json:"rental_days"`
	TotalPrice      float64           `bson:"total_price" json:"total_price"`
	Status          ReservationStatus `bson:"status" json:"status"`
	Invoice         Invoice           `bson:"invoice" json:"invoice"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updated_at"`
}

// CanTransitionTo reports whether the reservation status machine allows
// moving from the current status to target.
func (r *Reservation) CanTransitionTo(target ReservationStatus) bool {
	switch r.Status {
	case ReservationStatusPending:
		return target == ReservationStatusApproved || target == ReservationStatusCancelled
	case ReservationStatusApproved:
		return target == ReservationStatusPickedUp || target == ReservationStatusCancelled
	case ReservationStatusPickedUp:
		return target == ReservationStatusCompleted
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (r *Reservation) IsTerminal() bool {
	return r.Status == ReservationStatusCancelled || r.Status == ReservationStatusCompleted
}
