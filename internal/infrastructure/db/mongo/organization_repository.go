package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/assessly/assessment-api/internal/core/domain"
)

const organizationsCollection = "organizations"

type OrganizationRepository struct {
	coll *mongo.Collection
}

func NewOrganizationRepository(db *mongo.Database) *OrganizationRepository {
	return &OrganizationRepository{coll: db.Collection(organizationsCollection)}
}

type mongoOrganization struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	OwnerUserID      string             `bson:"owner_user_id,omitempty"`
	StripeCustomerID string             `bson:"stripe_customer_id,omitempty"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
}

func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoOrganization{
		Name:        org.Name,
		OwnerUserID: org.OwnerUserID,
		CreatedAt:   org.CreatedAt.Unix(),
		UpdatedAt:   org.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert organization: %w", err)
	}

	created := *org
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrganizationNotFound
	}

	var mo mongoOrganization
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("find organization: %w", err)
	}

	return &domain.Organization{
		ID:               mo.ID.Hex(),
		Name:             mo.Name,
		OwnerUserID:      mo.OwnerUserID,
		StripeCustomerID: mo.StripeCustomerID,
		CreatedAt:        unixToTime(mo.CreatedAt),
		UpdatedAt:        unixToTime(mo.UpdatedAt),
	}, nil
}

// SetOwner records which user owns the organization. Called once right after
// registration, when the owner account has received its id.
func (r *OrganizationRepository) SetOwner(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrganizationNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"owner_user_id": userID}},
	)
	if err != nil {
		return fmt.Errorf("set organization owner: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

// Delete removes an organization. Used to clean up after a registration that
// failed halfway.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrganizationNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

// SetStripeCustomerID pins the provider customer reference on the organization.
func (r *OrganizationRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrganizationNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"stripe_customer_id": customerID}},
	)
	if err != nil {
		return fmt.Errorf("set stripe customer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}
