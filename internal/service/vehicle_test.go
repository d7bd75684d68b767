package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"crfms-backend/internal/clock"
	"crfms-backend/internal/domain"
	"crfms-backend/internal/service"
)

func TestVehicleService_ScheduleMaintenance(t *testing.T) {
	vehicleRepo := new(MockVehicleRepo)
	userRepo := new(MockUserRepo)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	svc := service.NewVehicleService(vehicleRepo, userRepo, clk)

	ctx := context.Background()
	manager := &domain.User{ID: "emp-2", Name: "Sam", Role: domain.RoleManager}

	t.Run("Success", func(t *testing.T) {
		vehicle := &domain.Vehicle{ID: "veh-1", Status: domain.VehicleStatusAvailable, Mileage: 42000}

		userRepo.On("GetEmployeeByID", ctx, "emp-2").Return(manager, nil).Once()
		vehicleRepo.On("GetByID", ctx, "veh-1").Return(vehicle, nil).Once()
		vehicleRepo.On("Update", ctx, mock.AnythingOfType("*domain.Vehicle")).Return(nil).Once()

		updated, err := svc.ScheduleMaintenance(ctx, "veh-1", "emp-2", "brake pads")
		assert.NoError(t, err)
		assert.Equal(t, domain.VehicleStatusOutOfService, updated.Status)
		assert.Len(t, updated.MaintenanceRecords, 1)
		record := updated.MaintenanceRecords[0]
		assert.Equal(t, "emp-2", record.ScheduledBy)
		assert.Equal(t, 42000.0, record.Odometer)
		assert.Equal(t, "brake pads", record.Note)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), record.ServiceDate)
		assert.Nil(t, record.CompletedAt)
		vehicleRepo.AssertExpectations(t)
	})

	t.Run("Vehicle With Customer Rejected", func(t *testing.T) {
		vehicle := &domain.Vehicle{ID: "veh-1", Status: domain.VehicleStatusPickedUp}
		userRepo.On("GetEmployeeByID", ctx, "emp-2").Return(manager, nil).Once()
		vehicleRepo.On("GetByID", ctx, "veh-1").Return(vehicle, nil).Once()

		updated, err := svc.ScheduleMaintenance(ctx, "veh-1", "emp-2", "oil change")
		assert.Error(t, err)
		assert.Nil(t, updated)
		assert.Contains(t, err.Error(), "currently with a customer")
	})

	t.Run("Already Out Of Service", func(t *testing.T) {
		vehicle := &domain.Vehicle{ID: "veh-1", Status: domain.VehicleStatusOutOfService}
		userRepo.On("GetEmployeeByID", ctx, "emp-2").Return(manager, nil).Once()
		vehicleRepo.On("GetByID", ctx, "veh-1").Return(vehicle, nil).Once()

		updated, err := svc.ScheduleMaintenance(ctx, "veh-1", "emp-2", "oil change")
		assert.Error(t, err)
		assert.Nil(t, updated)
		assert.Contains(t, err.Error(), "already out of service")
	})
}

func TestVehicleService_CompleteMaintenance(t *testing.T) {
	vehicleRepo := new(MockVehicleRepo)
	userRepo := new(MockUserRepo)

	now := time.Date(2026, 3, 4, 16, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	svc := service.NewVehicleService(vehicleRepo, userRepo, clk)

	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		earlier := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
		vehicle := &domain.Vehicle{
			ID:     "veh-1",
			Status: domain.VehicleStatusOutOfService,
			MaintenanceRecords: []domain.MaintenanceRecord{
				{ID: "mnt-1", Note: "tires", CompletedAt: &earlier},
				{ID: "mnt-2", Note: "brake pads"},
			},
		}
		vehicleRepo.On("GetByID", ctx, "veh-1").Return(vehicle, nil).Once()
		vehicleRepo.On("Update", ctx, mock.AnythingOfType("*domain.Vehicle")).Return(nil).Once()

		updated, err := svc.CompleteMaintenance(ctx, "veh-1")
		assert.NoError(t, err)
		assert.Equal(t, domain.VehicleStatusAvailable, updated.Status)
		assert.Equal(t, earlier, *updated.MaintenanceRecords[0].CompletedAt) // untouched
		assert.NotNil(t, updated.MaintenanceRecords[1].CompletedAt)
		assert.Equal(t, now, *updated.MaintenanceRecords[1].CompletedAt)
		vehicleRepo.AssertExpectations(t)
	})

	t.Run("Not Out Of Service", func(t *testing.T) {
		vehicle := &domain.Vehicle{ID: "veh-1", Status: domain.VehicleStatusAvailable}
		vehicleRepo.On("GetByID", ctx, "veh-1").Return(vehicle, nil).Once()

		updated, err := svc.CompleteMaintenance(ctx, "veh-1")
		assert.Error(t, err)
		assert.Nil(t, updated)
		assert.Contains(t, err.Error(), "is not out of service")
	})
}
