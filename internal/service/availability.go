package service

import (
	"context"
	"time"

	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository"
)

type availabilityService struct {
	reservationRepo repository.ReservationRepository
}

func NewAvailabilityService(reservationRepo repository.ReservationRepository) AvailabilityService {
	return &availabilityService{reservationRepo: reservationRepo}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, vehicleID string, pickupDate, returnDate time.Time, excludeReservationID string) (bool, error) {
	conflict, err := s.reservationRepo.GetConflicting(ctx, vehicleID, pickupDate, returnDate, excludeReservationID)
	if err != nil {
		return false, err
	}
	if conflict != nil {
		logger.Debug("Vehicle has conflicting reservation",
			"vehicle_id", vehicleID,
			"conflicting_reservation_id", conflict.ID)
		return false, nil
	}
	return true, nil
}

func (s *availabilityService) HasExtensionConflict(ctx context.Context, vehicleID string, currentReturnDate, newReturnDate time.Time, excludeReservationID string) (bool, error) {
	conflict, err := s.reservationRepo.GetConflicting(ctx, vehicleID, currentReturnDate, newReturnDate, excludeReservationID)
	if err != nil {
		return false, err
	}
	return conflict != nil, nil
}
