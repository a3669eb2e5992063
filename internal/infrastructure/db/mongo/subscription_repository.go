package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assessly/assessment-api/internal/core/domain"
)

const subscriptionsCollection = "subscriptions"

type SubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{coll: db.Collection(subscriptionsCollection)}
}

func (r *SubscriptionRepository) FindByOrganization(ctx context.Context, orgID string) (*domain.Subscription, error) {
	return r.findOne(ctx, bson.M{"organization_id": orgID})
}

func (r *SubscriptionRepository) FindByStripeSubscriptionID(ctx context.Context, subID string) (*domain.Subscription, error) {
	return r.findOne(ctx, bson.M{"stripe_subscription_id": subID})
}

func (r *SubscriptionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var sub domain.Subscription
	if err := r.coll.FindOne(ctx, filter).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

// Upsert writes the subscription record keyed by organization id. A single
// document per organization is the transactional unit the reconciler relies on.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if sub.ID == "" {
		sub.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"organization_id": sub.OrganizationID},
		sub,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique org index and the provider-subscription lookup index.
func (r *SubscriptionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organization_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "stripe_subscription_id", Value: 1}}},
	})
	return err
}
