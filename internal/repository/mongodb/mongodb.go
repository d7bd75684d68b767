package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository"
)

// Collection names.
const (
	collReservations   = "reservations"
	collRentals        = "rentals"
	collVehicles       = "vehicles"
	collCustomers      = "customers"
	collEmployees      = "employees"
	collBranches       = "branches"
	collAddOns         = "add_ons"
	collInsuranceTiers = "insurance_tiers"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	repository.ReservationRepository
	repository.RentalRepository
	repository.VehicleRepository
	repository.UserRepository
	repository.CatalogRepository
	repository.BranchRepository
}

// Connect establishes a MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

func NewStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:                client,
		db:                    db,
		ReservationRepository: NewReservationRepository(db),
		RentalRepository:      NewRentalRepository(db),
		VehicleRepository:     NewVehicleRepository(db),
		UserRepository:        NewUserRepository(db),
		CatalogRepository:     NewCatalogRepository(db),
		BranchRepository:      NewBranchRepository(db),
	}
}

// EnsureIndexes creates the indexes the business rules depend on. The
// unique pickup token index backs pickup idempotency and must exist
// before the server takes traffic.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	rentalIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pickup_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "reservation_id", Value: 1}}},
		{Keys: bson.D{{Key: "agent_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := s.db.Collection(collRentals).Indexes().CreateMany(ctx, rentalIndexes); err != nil {
		return fmt.Errorf("failed to create rental indexes: %w", err)
	}

	reservationIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := s.db.Collection(collReservations).Indexes().CreateMany(ctx, reservationIndexes); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}

	vehicleIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "plate", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "branch_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := s.db.Collection(collVehicles).Indexes().CreateMany(ctx, vehicleIndexes); err != nil {
		return fmt.Errorf("failed to create vehicle indexes: %w", err)
	}

	logger.Info("MongoDB indexes ensured")
	return nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
