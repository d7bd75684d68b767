package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"crfms-backend/internal/domain"
)

// ErrDuplicateKey marks writes rejected by a unique index. Callers that
// rely on unique indexes for idempotency check for it with errors.Is.
var ErrDuplicateKey = errors.New("duplicate key")

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Update(ctx context.Context, reservation *domain.Reservation) error

	// Delete removes a reservation document. It exists so writers can back
	// out an insert that lost a concurrency re-check; cancellation is a
	// status change, never a delete.
	Delete(ctx context.Context, id string) error

	ListByCustomer(ctx context.Context, customerID string) ([]domain.Reservation, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]domain.Reservation, error)
	ListByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error)

	// CountByCustomer counts a customer's reservations regardless of status.
	// excludeID is skipped when non-empty so price recalculations see the
	// same history as the original quote.
	CountByCustomer(ctx context.Context, customerID, excludeID string) (int64, error)

	// GetConflicting returns a reservation in a blocking status whose period
	// overlaps [pickupDate, returnDate] inclusive for the vehicle, or nil
	// when none exists. excludeID is skipped when non-empty.
	GetConflicting(ctx context.Context, vehicleID string, pickupDate, returnDate time.Time, excludeID string) (*domain.Reservation, error)
}

type RentalRepository interface {
	// Create returns an error matching ErrDuplicateKey when the pickup
	// token is already taken.
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error

	// GetByPickupToken returns nil, nil when no rental carries the token.
	GetByPickupToken(ctx context.Context, token string) (*domain.Rental, error)
	// GetByReservation returns nil, nil when the reservation has no rental.
	GetByReservation(ctx context.Context, reservationID string) (*domain.Rental, error)

	ListByCustomer(ctx context.Context, customerID string) ([]domain.Rental, error)
	ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	ListByBranch(ctx context.Context, branchID string) ([]domain.Vehicle, error)
}

type UserRepository interface {
	GetCustomerByID(ctx context.Context, id string) (*domain.User, error)
	GetEmployeeByID(ctx context.Context, id string) (*domain.User, error)
}

type CatalogRepository interface {
	GetAddOnsByIDs(ctx context.Context, ids []string) ([]domain.AddOn, error)
	GetInsuranceTierByID(ctx context.Context, id string) (*domain.InsuranceTier, error)
}

type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
}
