package mongodb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crfms-backend/internal/domain"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository"
)

// blockingStatuses are the reservation statuses that hold a vehicle for
// a period. Cancelled, picked up and completed reservations never block.
var blockingStatuses = []domain.ReservationStatus{
	domain.ReservationStatusPending,
	domain.ReservationStatusApproved,
}

type reservationRepository struct {
	coll *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) repository.ReservationRepository {
	return &reservationRepository{coll: db.Collection(collReservations)}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	logger.DatabaseCall("insert_one", collReservations, "reservation_id", reservation.ID)
	_, err := r.coll.InsertOne(ctx, reservation)
	logger.DatabaseResult("insert_one", err, "reservation_id", reservation.ID)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Mark(err, repository.ErrDuplicateKey)
		}
		return errors.Wrap(err, "failed to insert reservation")
	}
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var reservation domain.Reservation
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Ef(domain.KindNotFound, "reservation with ID '%s' not found", id)
		}
		return nil, errors.Wrap(err, "failed to find reservation")
	}
	return &reservation, nil
}

func (r *reservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	// The embedded invoice is written together with total_price so the
	// two can never diverge.
	update := bson.M{"$set": bson.M{
		"vehicle_id":        reservation.VehicleID,
		"insurance_tier_id": reservation.InsuranceTierID,
		"pickup_branch_id":  reservation.PickupBranchID,
		"return_branch_id":  reservation.ReturnBranchID,
		"pickup_date":       reservation.PickupDate,
		"return_date":       reservation.ReturnDate,
		"add_ons":           reservation.AddOns,
		"rental_days":       reservation.RentalDays,
		"total_price":       reservation.TotalPrice,
		"status":            reservation.Status,
		"invoice":           reservation.Invoice,
		"updated_at":        reservation.UpdatedAt,
	}}

	logger.DatabaseCall("update_one", collReservations, "reservation_id", reservation.ID)
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": reservation.ID}, update)
	logger.DatabaseResult("update_one", err, "reservation_id", reservation.ID)
	if err != nil {
		return errors.Wrap(err, "failed to update reservation")
	}
	if result.MatchedCount == 0 {
		return domain.Ef(domain.KindNotFound, "reservation with ID '%s' not found", reservation.ID)
	}
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id string) error {
	logger.DatabaseCall("delete_one", collReservations, "reservation_id", id)
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	logger.DatabaseResult("delete_one", err, "reservation_id", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete reservation")
	}
	if result.DeletedCount == 0 {
		return domain.Ef(domain.KindNotFound, "reservation with ID '%s' not found", id)
	}
	return nil
}

func (r *reservationRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Reservation, error) {
	return r.list(ctx, bson.M{"customer_id": customerID}, bson.D{{Key: "created_at", Value: -1}})
}

// ListByVehicle orders by pickup date so callers see the vehicle's schedule.
func (r *reservationRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.Reservation, error) {
	return r.list(ctx, bson.M{"vehicle_id": vehicleID}, bson.D{{Key: "pickup_date", Value: 1}})
}

func (r *reservationRepository) ListByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return r.list(ctx, bson.M{"status": status}, bson.D{{Key: "created_at", Value: -1}})
}

func (r *reservationRepository) list(ctx context.Context, filter bson.M, sort bson.D) ([]domain.Reservation, error) {
	opts := options.Find().SetSort(sort)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reservations")
	}
	var reservations []domain.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, errors.Wrap(err, "failed to decode reservations")
	}
	return reservations, nil
}

func (r *reservationRepository) CountByCustomer(ctx context.Context, customerID, excludeID string) (int64, error) {
	filter := bson.M{"customer_id": customerID}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count reservations")
	}
	return count, nil
}

func (r *reservationRepository) GetConflicting(ctx context.Context, vehicleID string, pickupDate, returnDate time.Time, excludeID string) (*domain.Reservation, error) {
	// Inclusive overlap: an existing reservation conflicts when its period
	// touches the requested one on either end.
	filter := bson.M{
		"vehicle_id":  vehicleID,
		"status":      bson.M{"$in": blockingStatuses},
		"pickup_date": bson.M{"$lte": returnDate},
		"return_date": bson.M{"$gte": pickupDate},
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	logger.DatabaseCall("find_one", collReservations, "vehicle_id", vehicleID)
	var reservation domain.Reservation
	err := r.coll.FindOne(ctx, filter).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to check for conflicting reservations")
	}
	return &reservation, nil
}
