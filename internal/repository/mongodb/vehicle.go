package mongodb

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"crfms-backend/internal/domain"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository"
)

type vehicleRepository struct {
	coll *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) repository.VehicleRepository {
	return &vehicleRepository{coll: db.Collection(collVehicles)}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	logger.DatabaseCall("insert_one", collVehicles, "vehicle_id", vehicle.ID)
	_, err := r.coll.InsertOne(ctx, vehicle)
	logger.DatabaseResult("insert_one", err, "vehicle_id", vehicle.ID)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Mark(err, repository.ErrDuplicateKey)
		}
		return errors.Wrap(err, "failed to insert vehicle")
	}
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Ef(domain.KindNotFound, "vehicle with ID '%s' not found", id)
		}
		return nil, errors.Wrap(err, "failed to find vehicle")
	}
	return &vehicle, nil
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	update := bson.M{"$set": bson.M{
		"plate":               vehicle.Plate,
		"brand":               vehicle.Brand,
		"model":               vehicle.Model,
		"year":                vehicle.Year,
		"class":               vehicle.Class,
		"price_per_day":       vehicle.PricePerDay,
		"mileage":             vehicle.Mileage,
		"branch_id":           vehicle.BranchID,
		"status":              vehicle.Status,
		"maintenance_records": vehicle.MaintenanceRecords,
		"updated_at":          vehicle.UpdatedAt,
	}}

	logger.DatabaseCall("update_one", collVehicles, "vehicle_id", vehicle.ID)
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": vehicle.ID}, update)
	logger.DatabaseResult("update_one", err, "vehicle_id", vehicle.ID)
	if err != nil {
		return errors.Wrap(err, "failed to update vehicle")
	}
	if result.MatchedCount == 0 {
		return domain.Ef(domain.KindNotFound, "vehicle with ID '%s' not found", vehicle.ID)
	}
	return nil
}

func (r *vehicleRepository) ListByBranch(ctx context.Context, branchID string) ([]domain.Vehicle, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"branch_id": branchID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vehicles")
	}
	var vehicles []domain.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, errors.Wrap(err, "failed to decode vehicles")
	}
	return vehicles, nil
}
