package mongodb

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crfms-backend/internal/domain"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository"
)

type rentalRepository struct {
	coll *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) repository.RentalRepository {
	return &rentalRepository{coll: db.Collection(collRentals)}
}

func (r *rentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	logger.DatabaseCall("insert_one", collRentals, "rental_id", rental.ID, "pickup_token", rental.PickupToken)
	_, err := r.coll.InsertOne(ctx, rental)
	logger.DatabaseResult("insert_one", err, "rental_id", rental.ID)
	if err != nil {
		// The unique pickup_token index rejects concurrent duplicates.
		if mongo.IsDuplicateKeyError(err) {
			return errors.Mark(err, repository.ErrDuplicateKey)
		}
		return errors.Wrap(err, "failed to insert rental")
	}
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	var rental domain.Rental
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rental)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Ef(domain.KindNotFound, "rental with ID '%s' not found", id)
		}
		return nil, errors.Wrap(err, "failed to find rental")
	}
	return &rental, nil
}

func (r *rentalRepository) Update(ctx context.Context, rental *domain.Rental) error {
	update := bson.M{"$set": bson.M{
		"status":     rental.Status,
		"return":     rental.Return,
		"charges":    rental.Charges,
		"updated_at": rental.UpdatedAt,
	}}

	logger.DatabaseCall("update_one", collRentals, "rental_id", rental.ID)
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": rental.ID}, update)
	logger.DatabaseResult("update_one", err, "rental_id", rental.ID)
	if err != nil {
		return errors.Wrap(err, "failed to update rental")
	}
	if result.MatchedCount == 0 {
		return domain.Ef(domain.KindNotFound, "rental with ID '%s' not found", rental.ID)
	}
	return nil
}

func (r *rentalRepository) GetByPickupToken(ctx context.Context, token string) (*domain.Rental, error) {
	var rental domain.Rental
	err := r.coll.FindOne(ctx, bson.M{"pickup_token": token}).Decode(&rental)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find rental by pickup token")
	}
	return &rental, nil
}

func (r *rentalRepository) GetByReservation(ctx context.Context, reservationID string) (*domain.Rental, error) {
	var rental domain.Rental
	err := r.coll.FindOne(ctx, bson.M{"reservation_id": reservationID}).Decode(&rental)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find rental by reservation")
	}
	return &rental, nil
}

func (r *rentalRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Rental, error) {
	return r.list(ctx, bson.M{"customer_id": customerID})
}

func (r *rentalRepository) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.list(ctx, bson.M{"status": status})
}

func (r *rentalRepository) list(ctx context.Context, filter bson.M) ([]domain.Rental, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rentals")
	}
	var rentals []domain.Rental
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, errors.Wrap(err, "failed to decode rentals")
	}
	return rentals, nil
}
