package mongodb

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"crfms-backend/internal/domain"
	"crfms-backend/internal/repository"
)

type branchRepository struct {
	coll *mongo.Collection
}

func NewBranchRepository(db *mongo.Database) repository.BranchRepository {
	return &branchRepository{coll: db.Collection(collBranches)}
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	var branch domain.Branch
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&branch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Ef(domain.KindNotFound, "branch with ID '%s' not found", id)
		}
		return nil, errors.Wrap(err, "failed to find branch")
	}
	return &branch, nil
}
