package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"crfms-backend/internal/clock"
	"crfms-backend/internal/domain"
	"crfms-backend/internal/events"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/pricing"
	"crfms-backend/internal/repository"
)

type rentalService struct {
	rentalRepo      repository.RentalRepository
	reservationRepo repository.ReservationRepository
	vehicleRepo     repository.VehicleRepository
	userRepo        repository.UserRepository
	catalogRepo     repository.CatalogRepository
	availability    AvailabilityService
	publisher       events.Publisher
	clock           clock.Clock
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	reservationRepo repository.ReservationRepository,
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	catalogRepo repository.CatalogRepository,
	availability AvailabilityService,
	publisher events.Publisher,
	clk clock.Clock,
) RentalService {
	return &rentalService{
		rentalRepo:      rentalRepo,
		reservationRepo: reservationRepo,
		vehicleRepo:     vehicleRepo,
		userRepo:        userRepo,
		catalogRepo:     catalogRepo,
		availability:    availability,
		publisher:       publisher,
		clock:           clk,
	}
}

func (s *rentalService) PickupVehicle(ctx context.Context, reservationID, agentID, pickupToken string, odometer, fuelLevel float64) (*domain.Rental, error) {
	if pickupToken == "" {
		return nil, domain.E(domain.KindInvalidInput, "pickup token is required")
	}

	// A retried token returns the rental it already created, before any
	// other validation runs.
	existing, err := s.rentalRepo.GetByPickupToken(ctx, pickupToken)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Info("Pickup token already used, returning existing rental",
			"rental_id", existing.ID, "pickup_token", pickupToken)
		return existing, nil
	}

	if odometer <= 0 {
		return nil, domain.E(domain.KindInvalidInput, "odometer reading must be positive")
	}
	if fuelLevel < 0 || fuelLevel > 1 {
		return nil, domain.E(domain.KindInvalidInput, "fuel level must be between 0 and 1")
	}

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != domain.ReservationStatusApproved {
		return nil, domain.Ef(domain.KindInvalidState, "reservation must be approved before pickup, current status: '%s'", reservation.Status)
	}

	rentalForReservation, err := s.rentalRepo.GetByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if rentalForReservation != nil {
		return nil, domain.Ef(domain.KindConflict, "reservation '%s' has already been picked up, rental ID: %s", reservationID, rentalForReservation.ID)
	}

	agent, err := s.userRepo.GetEmployeeByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, reservation.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == domain.VehicleStatusOutOfService {
		return nil, domain.Ef(domain.KindInvalidState, "vehicle '%s' is out of service", vehicle.ID)
	}

	now := s.clock.Now()
	rental := &domain.Rental{
		ID:            uuid.New().String(),
		ReservationID: reservation.ID,
		VehicleID:     vehicle.ID,
		CustomerID:    reservation.CustomerID,
		AgentID:       agent.ID,
		PickupToken:   pickupToken,
		Status:        domain.RentalStatusActive,
		Pickup: domain.Readings{
			Odometer:  odometer,
			FuelLevel: fuelLevel,
			Timestamp: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		// Lost a race on the token; the winner's rental is the result.
		if errors.Is(err, repository.ErrDuplicateKey) {
			winner, readErr := s.rentalRepo.GetByPickupToken(ctx, pickupToken)
			if readErr != nil {
				return nil, readErr
			}
			if winner != nil {
				logger.Info("Concurrent pickup detected, returning winning rental",
					"rental_id", winner.ID, "pickup_token", pickupToken)
				return winner, nil
			}
		}
		return nil, err
	}

	// The rental is the source of truth from here on; status propagation
	// failures are logged, not rolled back.
	reservation.Status = domain.ReservationStatusPickedUp
	reservation.UpdatedAt = now
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		logger.Error("Failed to update reservation status after pickup",
			"reservation_id", reservation.ID, "error", err)
	}

	vehicle.Status = domain.VehicleStatusPickedUp
	vehicle.UpdatedAt = now
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		logger.Error("Failed to update vehicle status after pickup",
			"vehicle_id", vehicle.ID, "error", err)
	}

	logger.Info("Vehicle picked up",
		"rental_id", rental.ID,
		"reservation_id", reservation.ID,
		"vehicle_id", vehicle.ID,
		"agent_id", agent.ID)

	publishEvent(ctx, s.publisher, domain.EventPickupCompleted, map[string]any{
		"rental_id":      rental.ID,
		"reservation_id": reservation.ID,
		"vehicle_id":     vehicle.ID,
		"customer_id":    reservation.CustomerID,
		"agent_id":       agent.ID,
	})

	return rental, nil
}

func (s *rentalService) ReturnVehicle(ctx context.Context, rentalID, agentID string, odometer, fuelLevel, damageFee float64) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, domain.Ef(domain.KindInvalidState, "rental is not active, current status: '%s'", rental.Status)
	}

	agent, err := s.userRepo.GetEmployeeByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if odometer < rental.Pickup.Odometer {
		return nil, domain.E(domain.KindInvalidInput, "return odometer cannot be less than pickup odometer")
	}
	if fuelLevel < 0 || fuelLevel > 1 {
		return nil, domain.E(domain.KindInvalidInput, "fuel level must be between 0 and 1")
	}
	if damageFee < 0 {
		return nil, domain.E(domain.KindInvalidInput, "damage fee cannot be negative")
	}

	reservation, err := s.reservationRepo.GetByID(ctx, rental.ReservationID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	returnReadings := domain.Readings{
		Odometer:  odometer,
		FuelLevel: fuelLevel,
		Timestamp: now,
	}

	charges := pricing.CalculateCharges(pricing.ChargeInputs{
		PickupDate: reservation.PickupDate,
		ReturnDate: reservation.ReturnDate,
		BasePrice:  reservation.TotalPrice,
		Pickup:     rental.Pickup,
		Return:     returnReadings,
		DamageFee:  damageFee,
	})

	rental.Return = &returnReadings
	rental.Charges = &charges
	rental.Status = domain.RentalStatusCompleted
	rental.UpdatedAt = now
	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, err
	}

	reservation.Status = domain.ReservationStatusCompleted
	reservation.UpdatedAt = now
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		logger.Error("Failed to update reservation status after return",
			"reservation_id", reservation.ID, "error", err)
	}

	// Release the vehicle and roll its mileage forward.
	vehicle, err := s.vehicleRepo.GetByID(ctx, rental.VehicleID)
	if err != nil {
		logger.Error("Failed to load vehicle after return", "vehicle_id", rental.VehicleID, "error", err)
	} else {
		vehicle.Status = domain.VehicleStatusAvailable
		vehicle.Mileage = odometer
		vehicle.UpdatedAt = now
		if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
			logger.Error("Failed to release vehicle after return", "vehicle_id", vehicle.ID, "error", err)
		}
	}

	logger.Info("Vehicle returned",
		"rental_id", rental.ID,
		"agent_id", agent.ID,
		"total_charges", charges.Total,
		"late_fee", charges.LateFee,
		"distance_overage_fee", charges.DistanceOverageFee,
		"fuel_refill_fee", charges.FuelRefillFee)

	publishEvent(ctx, s.publisher, domain.EventReturnCompleted, map[string]any{
		"rental_id":      rental.ID,
		"reservation_id": rental.ReservationID,
		"vehicle_id":     rental.VehicleID,
		"customer_id":    rental.CustomerID,
		"total_charges":  charges.Total,
	})

	return rental, nil
}

func (s *rentalService) ExtendRental(ctx context.Context, rentalID string, newReturnDate time.Time) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, domain.Ef(domain.KindInvalidState, "only active rentals can be extended, current status: '%s'", rental.Status)
	}

	reservation, err := s.reservationRepo.GetByID(ctx, rental.ReservationID)
	if err != nil {
		return nil, err
	}

	newReturnDate = truncateToDate(newReturnDate)
	if !newReturnDate.After(reservation.ReturnDate) {
		return nil, domain.E(domain.KindInvalidInput, "new return date must be after the current return date")
	}

	conflict, err := s.availability.HasExtensionConflict(ctx, rental.VehicleID, reservation.ReturnDate, newReturnDate, reservation.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domain.Ef(domain.KindConflict, "vehicle '%s' has a conflicting reservation between %s and %s",
			rental.VehicleID,
			reservation.ReturnDate.Format("2006-01-02"),
			newReturnDate.Format("2006-01-02"))
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, rental.VehicleID)
	if err != nil {
		return nil, err
	}
	tier, err := s.catalogRepo.GetInsuranceTierByID(ctx, reservation.InsuranceTierID)
	if err != nil {
		return nil, err
	}

	// Excluding the reservation itself keeps the discount basis identical
	// to the original quote.
	count, err := s.reservationRepo.CountByCustomer(ctx, reservation.CustomerID, reservation.ID)
	if err != nil {
		return nil, err
	}

	previousReturnDate := reservation.ReturnDate
	original := *reservation
	totalPrice, rentalDays, strategy := pricing.Quote(vehicle.PricePerDay, tier.PricePerDay, reservation.AddOns, reservation.PickupDate, newReturnDate, int(count))

	now := s.clock.Now()
	reservation.ReturnDate = newReturnDate
	reservation.RentalDays = rentalDays
	reservation.TotalPrice = totalPrice
	reservation.Invoice.TotalPrice = totalPrice
	reservation.UpdatedAt = now
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	// A booking for the extension window written while we were quoting is
	// only visible now. Restore the old return date when one appears.
	conflict, err = s.availability.HasExtensionConflict(ctx, rental.VehicleID, previousReturnDate, newReturnDate, reservation.ID)
	if err == nil && conflict {
		err = domain.Ef(domain.KindConflict, "vehicle '%s' has a conflicting reservation between %s and %s",
			rental.VehicleID,
			previousReturnDate.Format("2006-01-02"),
			newReturnDate.Format("2006-01-02"))
	}
	if err != nil {
		if revertErr := s.reservationRepo.Update(ctx, &original); revertErr != nil {
			logger.Error("Failed to restore reservation after conflicting extension",
				"reservation_id", reservation.ID, "error", revertErr)
		}
		return nil, err
	}

	logger.Info("Rental extended",
		"rental_id", rental.ID,
		"previous_return_date", previousReturnDate.Format("2006-01-02"),
		"new_return_date", newReturnDate.Format("2006-01-02"),
		"total_price", totalPrice,
		"strategy", strategy)

	publishEvent(ctx, s.publisher, domain.EventRentalExtended, map[string]any{
		"rental_id":            rental.ID,
		"reservation_id":       reservation.ID,
		"previous_return_date": previousReturnDate.Format("2006-01-02"),
		"new_return_date":      newReturnDate.Format("2006-01-02"),
		"total_price":          totalPrice,
	})

	return rental, nil
}

func (s *rentalService) GetRental(ctx context.Context, rentalID string) (*domain.Rental, error) {
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) ListCustomerRentals(ctx context.Context, customerID string) ([]domain.Rental, error) {
	return s.rentalRepo.ListByCustomer(ctx, customerID)
}
