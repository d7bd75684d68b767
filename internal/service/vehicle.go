package service

import (
	"context"

	"github.com/google/uuid"

	"crfms-backend/internal/clock"
	"crfms-backend/internal/domain"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository"
)

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
	userRepo    repository.UserRepository
	clock       clock.Clock
}

func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	clk clock.Clock,
) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		clock:       clk,
	}
}

func (s *vehicleService) ScheduleMaintenance(ctx context.Context, vehicleID, employeeID, note string) (*domain.Vehicle, error) {
	employee, err := s.userRepo.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	switch vehicle.Status {
	case domain.VehicleStatusPickedUp:
		return nil, domain.Ef(domain.KindInvalidState, "vehicle '%s' is currently with a customer", vehicle.ID)
	case domain.VehicleStatusOutOfService:
		return nil, domain.Ef(domain.KindInvalidState, "vehicle '%s' is already out of service", vehicle.ID)
	}

	now := s.clock.Now()
	record := domain.MaintenanceRecord{
		ID:          uuid.New().String(),
		ScheduledBy: employee.ID,
		ServiceDate: s.clock.Today(),
		Odometer:    vehicle.Mileage,
		Note:        note,
	}
	vehicle.MaintenanceRecords = append(vehicle.MaintenanceRecords, record)
	vehicle.Status = domain.VehicleStatusOutOfService
	vehicle.UpdatedAt = now
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	logger.Info("Vehicle scheduled for maintenance",
		"vehicle_id", vehicle.ID,
		"employee_id", employee.ID,
		"odometer", record.Odometer)

	return vehicle, nil
}

func (s *vehicleService) CompleteMaintenance(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != domain.VehicleStatusOutOfService {
		return nil, domain.Ef(domain.KindInvalidState, "vehicle '%s' is not out of service", vehicle.ID)
	}

	now := s.clock.Now()

	// Close the most recent open record.
	for i := len(vehicle.MaintenanceRecords) - 1; i >= 0; i-- {
		if vehicle.MaintenanceRecords[i].CompletedAt == nil {
			completedAt := now
			vehicle.MaintenanceRecords[i].CompletedAt = &completedAt
			break
		}
	}
	vehicle.Status = domain.VehicleStatusAvailable
	vehicle.UpdatedAt = now
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	logger.Info("Vehicle maintenance completed", "vehicle_id", vehicle.ID)

	return vehicle, nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, vehicleID)
}

func (s *vehicleService) ListBranchVehicles(ctx context.Context, branchID string) ([]domain.Vehicle, error) {
	return s.vehicleRepo.ListByBranch(ctx, branchID)
}
