package mongodb

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"crfms-backend/internal/domain"
	"crfms-backend/internal/repository"
)

type catalogRepository struct {
	addOns         *mongo.Collection
	insuranceTiers *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) repository.CatalogRepository {
	return &catalogRepository{
		addOns:         db.Collection(collAddOns),
		insuranceTiers: db.Collection(collInsuranceTiers),
	}
}

// GetAddOnsByIDs returns the add-ons that exist; callers detect missing
// IDs by comparing lengths.
func (r *catalogRepository) GetAddOnsByIDs(ctx context.Context, ids []string) ([]domain.AddOn, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.addOns.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find add-ons")
	}
	var addOns []domain.AddOn
	if err := cursor.All(ctx, &addOns); err != nil {
		return nil, errors.Wrap(err, "failed to decode add-ons")
	}
	return addOns, nil
}

func (r *catalogRepository) GetInsuranceTierByID(ctx context.Context, id string) (*domain.InsuranceTier, error) {
	var tier domain.InsuranceTier
	err := r.insuranceTiers.FindOne(ctx, bson.M{"_id": id}).Decode(&tier)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Ef(domain.KindNotFound, "insurance tier with ID '%s' not found", id)
		}
		return nil, errors.Wrap(err, "failed to find insurance tier")
	}
	return &tier, nil
}
