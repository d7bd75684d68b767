package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"crfms-backend/internal/clock"
	"crfms-backend/internal/domain"
	"crfms-backend/internal/events"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/pricing"
	"crfms-backend/internal/repository"
)

type reservationService struct {
	reservationRepo repository.ReservationRepository
	vehicleRepo     repository.VehicleRepository
	userRepo        repository.UserRepository
	catalogRepo     repository.CatalogRepository
	branchRepo      repository.BranchRepository
	availability    AvailabilityService
	publisher       events.Publisher
	clock           clock.Clock
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	catalogRepo repository.CatalogRepository,
	branchRepo repository.BranchRepository,
	availability AvailabilityService,
	publisher events.Publisher,
	clk clock.Clock,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		vehicleRepo:     vehicleRepo,
		userRepo:        userRepo,
		catalogRepo:     catalogRepo,
		branchRepo:      branchRepo,
		availability:    availability,
		publisher:       publisher,
		clock:           clk,
	}
}

func (s *reservationService) CreateReservation(ctx context.Context, customerID, vehicleID, insuranceTierID, pickupBranchID, returnBranchID string, pickupDate, returnDate time.Time, addOnIDs []string) (*domain.Reservation, error) {
	pickupDate = truncateToDate(pickupDate)
	returnDate = truncateToDate(returnDate)

	if !returnDate.After(pickupDate) {
		return nil, domain.E(domain.KindInvalidInput, "return date must be after pickup date")
	}
	if pickupDate.Before(s.clock.Today()) {
		return nil, domain.E(domain.KindInvalidInput, "pickup date cannot be in the past")
	}

	customer, err := s.userRepo.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	tier, err := s.catalogRepo.GetInsuranceTierByID(ctx, insuranceTierID)
	if err != nil {
		return nil, err
	}

	if _, err := s.branchRepo.GetByID(ctx, pickupBranchID); err != nil {
		return nil, err
	}
	if _, err := s.branchRepo.GetByID(ctx, returnBranchID); err != nil {
		return nil, err
	}

	available, err := s.availability.CheckAvailability(ctx, vehicle.ID, pickupDate, returnDate, "")
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.Ef(domain.KindConflict, "vehicle '%s' is not available from %s to %s",
			vehicle.ID, pickupDate.Format("2006-01-02"), returnDate.Format("2006-01-02"))
	}

	addOns, err := s.loadAddOnSnapshots(ctx, addOnIDs)
	if err != nil {
		return nil, err
	}

	totalPrice, rentalDays, strategy, err := s.quote(ctx, customer.ID, vehicle, tier, addOns, pickupDate, returnDate, "")
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	reservation := &domain.Reservation{
		ID:              uuid.New().String(),
		CustomerID:      customer.ID,
		VehicleID:       vehicle.ID,
		InsuranceTierID: tier.ID,
		PickupBranchID:  pickupBranchID,
		ReturnBranchID:  returnBranchID,
		PickupDate:      pickupDate,
		ReturnDate:      returnDate,
		AddOns:          addOns,
		RentalDays:      rentalDays,
		TotalPrice:      totalPrice,
		Status:          domain.ReservationStatusPending,
		Invoice: domain.Invoice{
			ID:         uuid.New().String(),
			Status:     domain.InvoiceStatusPending,
			IssuedDate: now,
			TotalPrice: totalPrice,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	// The availability check and the insert are not atomic; a concurrent
	// booking can land between them. Re-check after the insert and back
	// out our own document when one did.
	available, err = s.availability.CheckAvailability(ctx, vehicle.ID, pickupDate, returnDate, reservation.ID)
	if err == nil && !available {
		err = domain.Ef(domain.KindConflict, "vehicle '%s' is not available from %s to %s",
			vehicle.ID, pickupDate.Format("2006-01-02"), returnDate.Format("2006-01-02"))
	}
	if err != nil {
		if delErr := s.reservationRepo.Delete(ctx, reservation.ID); delErr != nil {
			logger.Error("Failed to back out reservation after conflicting insert",
				"reservation_id", reservation.ID, "error", delErr)
		}
		return nil, err
	}

	logger.Info("Reservation created",
		"reservation_id", reservation.ID,
		"customer_id", customer.ID,
		"vehicle_id", vehicle.ID,
		"total_price", totalPrice,
		"strategy", strategy)

	publishEvent(ctx, s.publisher, domain.EventReservationConfirmed, map[string]any{
		"reservation_id": reservation.ID,
		"customer_id":    customer.ID,
		"vehicle_id":     vehicle.ID,
		"pickup_date":    pickupDate.Format("2006-01-02"),
		"return_date":    returnDate.Format("2006-01-02"),
		"total_price":    totalPrice,
	})

	return reservation, nil
}

func (s *reservationService) UpdateReservation(ctx context.Context, reservationID string, update ReservationUpdate) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.IsTerminal() {
		return nil, domain.Ef(domain.KindInvalidState, "cannot update reservation with status '%s'", reservation.Status)
	}

	// Kept so a post-write conflict can restore the persisted state.
	original := *reservation

	needsRequote := false
	needsAvailabilityCheck := false

	if update.VehicleID != nil {
		if _, err := s.vehicleRepo.GetByID(ctx, *update.VehicleID); err != nil {
			return nil, err
		}
		reservation.VehicleID = *update.VehicleID
		needsRequote = true
		needsAvailabilityCheck = true
	}

	if update.InsuranceTierID != nil {
		if _, err := s.catalogRepo.GetInsuranceTierByID(ctx, *update.InsuranceTierID); err != nil {
			return nil, err
		}
		reservation.InsuranceTierID = *update.InsuranceTierID
		needsRequote = true
	}

	if update.PickupBranchID != nil {
		if _, err := s.branchRepo.GetByID(ctx, *update.PickupBranchID); err != nil {
			return nil, err
		}
		reservation.PickupBranchID = *update.PickupBranchID
	}

	if update.ReturnBranchID != nil {
		if _, err := s.branchRepo.GetByID(ctx, *update.ReturnBranchID); err != nil {
			return nil, err
		}
		reservation.ReturnBranchID = *update.ReturnBranchID
	}

	if update.PickupDate != nil {
		reservation.PickupDate = truncateToDate(*update.PickupDate)
		needsRequote = true
		needsAvailabilityCheck = true
	}

	if update.ReturnDate != nil {
		reservation.ReturnDate = truncateToDate(*update.ReturnDate)
		needsRequote = true
		needsAvailabilityCheck = true
	}

	if !reservation.ReturnDate.After(reservation.PickupDate) {
		return nil, domain.E(domain.KindInvalidInput, "return date must be after pickup date")
	}

	if update.AddOnIDs != nil {
		addOns, err := s.loadAddOnSnapshots(ctx, *update.AddOnIDs)
		if err != nil {
			return nil, err
		}
		reservation.AddOns = addOns
		needsRequote = true
	}

	if needsAvailabilityCheck {
		available, err := s.availability.CheckAvailability(ctx, reservation.VehicleID, reservation.PickupDate, reservation.ReturnDate, reservation.ID)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, domain.Ef(domain.KindConflict, "vehicle '%s' is not available from %s to %s",
				reservation.VehicleID,
				reservation.PickupDate.Format("2006-01-02"),
				reservation.ReturnDate.Format("2006-01-02"))
		}
	}

	if needsRequote {
		vehicle, err := s.vehicleRepo.GetByID(ctx, reservation.VehicleID)
		if err != nil {
			return nil, err
		}
		tier, err := s.catalogRepo.GetInsuranceTierByID(ctx, reservation.InsuranceTierID)
		if err != nil {
			return nil, err
		}

		// Excluding the reservation itself keeps the discount basis
		// identical to the original quote.
		totalPrice, rentalDays, strategy, err := s.quote(ctx, reservation.CustomerID, vehicle, tier, reservation.AddOns, reservation.PickupDate, reservation.ReturnDate, reservation.ID)
		if err != nil {
			return nil, err
		}

		reservation.TotalPrice = totalPrice
		reservation.RentalDays = rentalDays
		reservation.Invoice.TotalPrice = totalPrice

		logger.Info("Recalculated reservation price",
			"reservation_id", reservation.ID,
			"total_price", totalPrice,
			"strategy", strategy)
	}

	reservation.UpdatedAt = s.clock.Now()
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	if needsAvailabilityCheck {
		// Same non-atomic window as creation: a booking written between the
		// check and our update is only visible now. Restore the old state
		// when the re-check finds one.
		available, err := s.availability.CheckAvailability(ctx, reservation.VehicleID, reservation.PickupDate, reservation.ReturnDate, reservation.ID)
		if err == nil && !available {
			err = domain.Ef(domain.KindConflict, "vehicle '%s' is not available from %s to %s",
				reservation.VehicleID,
				reservation.PickupDate.Format("2006-01-02"),
				reservation.ReturnDate.Format("2006-01-02"))
		}
		if err != nil {
			if revertErr := s.reservationRepo.Update(ctx, &original); revertErr != nil {
				logger.Error("Failed to restore reservation after conflicting update",
					"reservation_id", reservation.ID, "error", revertErr)
			}
			return nil, err
		}
	}

	publishEvent(ctx, s.publisher, domain.EventReservationModified, map[string]any{
		"reservation_id": reservation.ID,
		"customer_id":    reservation.CustomerID,
		"vehicle_id":     reservation.VehicleID,
		"total_price":    reservation.TotalPrice,
	})

	return reservation, nil
}

func (s *reservationService) ApproveReservation(ctx context.Context, reservationID, agentID string) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	agent, err := s.userRepo.GetEmployeeByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if reservation.Status != domain.ReservationStatusPending {
		return nil, domain.Ef(domain.KindInvalidState, "only pending reservations can be approved, current status: '%s'", reservation.Status)
	}

	now := s.clock.Now()
	reservation.Status = domain.ReservationStatusApproved
	reservation.UpdatedAt = now
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	// The vehicle is held from approval until pickup or cancellation.
	vehicle, err := s.vehicleRepo.GetByID(ctx, reservation.VehicleID)
	if err != nil {
		logger.Error("Failed to load vehicle after approval", "vehicle_id", reservation.VehicleID, "error", err)
	} else {
		vehicle.Status = domain.VehicleStatusReserved
		vehicle.UpdatedAt = now
		if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
			logger.Error("Failed to update vehicle status after approval", "vehicle_id", vehicle.ID, "error", err)
		}
	}

	logger.Info("Reservation approved", "reservation_id", reservation.ID, "agent_id", agent.ID)

	publishEvent(ctx, s.publisher, domain.EventReservationApproved, map[string]any{
		"reservation_id": reservation.ID,
		"customer_id":    reservation.CustomerID,
		"agent_id":       agent.ID,
	})

	return reservation, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if !reservation.CanTransitionTo(domain.ReservationStatusCancelled) {
		return nil, domain.Ef(domain.KindInvalidState, "cannot cancel reservation with status '%s'", reservation.Status)
	}

	wasApproved := reservation.Status == domain.ReservationStatusApproved

	now := s.clock.Now()
	reservation.Status = domain.ReservationStatusCancelled
	reservation.UpdatedAt = now
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	if wasApproved {
		vehicle, err := s.vehicleRepo.GetByID(ctx, reservation.VehicleID)
		if err != nil {
			logger.Error("Failed to load vehicle after cancellation", "vehicle_id", reservation.VehicleID, "error", err)
		} else {
			vehicle.Status = domain.VehicleStatusAvailable
			vehicle.UpdatedAt = now
			if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
				logger.Error("Failed to release vehicle after cancellation", "vehicle_id", vehicle.ID, "error", err)
			}
		}
	}

	logger.Info("Reservation cancelled", "reservation_id", reservation.ID)

	publishEvent(ctx, s.publisher, domain.EventReservationCancelled, map[string]any{
		"reservation_id": reservation.ID,
		"customer_id":    reservation.CustomerID,
		"vehicle_id":     reservation.VehicleID,
	})

	return reservation, nil
}

func (s *reservationService) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, reservationID)
}

func (s *reservationService) ListCustomerReservations(ctx context.Context, customerID string) ([]domain.Reservation, error) {
	return s.reservationRepo.ListByCustomer(ctx, customerID)
}

// quote prices a period from already-resolved inputs plus the customer's
// reservation count.
func (s *reservationService) quote(ctx context.Context, customerID string, vehicle *domain.Vehicle, tier *domain.InsuranceTier, addOns []domain.AddOnSnapshot, pickupDate, returnDate time.Time, excludeReservationID string) (float64, int, pricing.Strategy, error) {
	count, err := s.reservationRepo.CountByCustomer(ctx, customerID, excludeReservationID)
	if err != nil {
		return 0, 0, "", err
	}

	totalPrice, rentalDays, strategy := pricing.Quote(vehicle.PricePerDay, tier.PricePerDay, addOns, pickupDate, returnDate, int(count))
	return totalPrice, rentalDays, strategy, nil
}

func (s *reservationService) loadAddOnSnapshots(ctx context.Context, addOnIDs []string) ([]domain.AddOnSnapshot, error) {
	if len(addOnIDs) == 0 {
		return []domain.AddOnSnapshot{}, nil
	}

	addOns, err := s.catalogRepo.GetAddOnsByIDs(ctx, addOnIDs)
	if err != nil {
		return nil, err
	}

	found := make(map[string]domain.AddOn, len(addOns))
	for _, addOn := range addOns {
		found[addOn.ID] = addOn
	}

	snapshots := make([]domain.AddOnSnapshot, 0, len(addOnIDs))
	var missing []string
	for _, id := range addOnIDs {
		addOn, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		snapshots = append(snapshots, domain.AddOnSnapshot{
			ID:          addOn.ID,
			Name:        addOn.Name,
			PricePerDay: addOn.PricePerDay,
		})
	}
	if len(missing) > 0 {
		return nil, domain.Ef(domain.KindNotFound, "add-ons not found: %s", strings.Join(missing, ", "))
	}

	return snapshots, nil
}
