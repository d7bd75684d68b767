package mongodb

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"crfms-backend/internal/domain"
	"crfms-backend/internal/repository"
)

// Customers and employees live in separate collections so branch staff
// queries never scan the customer base.
type userRepository struct {
	customers *mongo.Collection
	employees *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{
		customers: db.Collection(collCustomers),
		employees: db.Collection(collEmployees),
	}
}

func (r *userRepository) GetCustomerByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.customers.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Ef(domain.KindNotFound, "customer with ID '%s' not found", id)
		}
		return nil, errors.Wrap(err, "failed to find customer")
	}
	return &user, nil
}

func (r *userRepository) GetEmployeeByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.employees.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Ef(domain.KindNotFound, "employee with ID '%s' not found", id)
		}
		return nil, errors.Wrap(err, "failed to find employee")
	}
	return &user, nil
}
