package service

import (
	"context"
	"time"

	"crfms-backend/internal/domain"
	"crfms-backend/internal/events"
	"crfms-backend/internal/logger"
)

type AvailabilityService interface {
	// CheckAvailability reports whether the vehicle is free for the whole
	// period. Overlap with pending or approved reservations is inclusive
	// on both ends. excludeReservationID is skipped when non-empty.
	CheckAvailability(ctx context.Context, vehicleID string, pickupDate, returnDate time.Time, excludeReservationID string) (bool, error)

	// HasExtensionConflict reports whether another reservation blocks
	// extending a rental from currentReturnDate to newReturnDate.
	HasExtensionConflict(ctx context.Context, vehicleID string, currentReturnDate, newReturnDate time.Time, excludeReservationID string) (bool, error)
}

type ReservationService interface {
	CreateReservation(ctx context.Context, customerID, vehicleID, insuranceTierID, pickupBranchID, returnBranchID string, pickupDate, returnDate time.Time, addOnIDs []string) (*domain.Reservation, error)
	UpdateReservation(ctx context.Context, reservationID string, update ReservationUpdate) (*domain.Reservation, error)
	ApproveReservation(ctx context.Context, reservationID, agentID string) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)
	GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)
	ListCustomerReservations(ctx context.Context, customerID string) ([]domain.Reservation, error)
}

// ReservationUpdate carries optional field changes; nil means keep current.
type ReservationUpdate struct {
	VehicleID       *string
	InsuranceTierID *string
	PickupBranchID  *string
	ReturnBranchID  *string
	PickupDate      *time.Time
	ReturnDate      *time.Time
	AddOnIDs        *[]string
}

type RentalService interface {
	PickupVehicle(ctx context.Context, reservationID, agentID, pickupToken string, odometer, fuelLevel float64) (*domain.Rental, error)
	ReturnVehicle(ctx context.Context, rentalID, agentID string, odometer, fuelLevel, damageFee float64) (*domain.Rental, error)
	ExtendRental(ctx context.Context, rentalID string, newReturnDate time.Time) (*domain.Rental, error)
	GetRental(ctx context.Context, rentalID string) (*domain.Rental, error)
	ListCustomerRentals(ctx context.Context, customerID string) ([]domain.Rental, error)
}

type PaymentService interface {
	ProcessPayment(ctx context.Context, reservationID string, method domain.PaymentMethod) (*domain.PaymentResult, error)
}

type VehicleService interface {
	ScheduleMaintenance(ctx context.Context, vehicleID, employeeID, note string) (*domain.Vehicle, error)
	CompleteMaintenance(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	ListBranchVehicles(ctx context.Context, branchID string) ([]domain.Vehicle, error)
}

// truncateToDate drops the time-of-day component, keeping UTC midnight.
// All reservation period math works on calendar dates.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// publishEvent sends a domain event and logs failures. Delivery is
// best-effort; the state change has already been persisted.
func publishEvent(ctx context.Context, pub events.Publisher, eventType string, data map[string]any) {
	if err := pub.Publish(ctx, eventType, data); err != nil {
		logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}
