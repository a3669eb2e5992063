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

const (
	invitationsCollection = "invitations"
	submissionsCollection = "submissions"
)

type InvitationRepository struct {
	coll *mongo.Collection
}

func NewInvitationRepository(db *mongo.Database) *InvitationRepository {
	return &InvitationRepository{coll: db.Collection(invitationsCollection)}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *inv
	created.ID = primitive.NewObjectID().Hex()
	if _, err := r.coll.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	return &created, nil
}

func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *InvitationRepository) FindByID(ctx context.Context, orgID, id string) (*domain.Invitation, error) {
	return r.findOne(ctx, bson.M{"_id": id, "organization_id": orgID})
}

func (r *InvitationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var inv domain.Invitation
	if err := r.coll.FindOne(ctx, filter).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return &inv, nil
}

func (r *InvitationRepository) Update(ctx context.Context, inv *domain.Invitation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": inv.ID}, inv)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

func (r *InvitationRepository) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, fmt.Errorf("count invitations: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the unique token index plus the org index.
func (r *InvitationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "organization_id", Value: 1}}},
	})
	return err
}

type SubmissionRepository struct {
	coll *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{coll: db.Collection(submissionsCollection)}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) (*domain.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *sub
	created.ID = primitive.NewObjectID().Hex()
	if _, err := r.coll.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return &created, nil
}

func (r *SubmissionRepository) FindByInvitationID(ctx context.Context, invitationID string) (*domain.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var sub domain.Submission
	if err := r.coll.FindOne(ctx, bson.M{"invitation_id": invitationID}).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &sub, nil
}
