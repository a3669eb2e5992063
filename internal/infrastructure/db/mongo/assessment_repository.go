package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/assessly/assessment-api/internal/core/domain"
)

const assessmentsCollection = "assessments"

type AssessmentRepository struct {
	coll *mongo.Collection
}

func NewAssessmentRepository(db *mongo.Database) *AssessmentRepository {
	return &AssessmentRepository{coll: db.Collection(assessmentsCollection)}
}

// Assessments are stored with the domain struct's bson tags directly. The _id
// is a hex string assigned at insert so documents round-trip without a
// separate mapping struct.

func (r *AssessmentRepository) Create(ctx context.Context, a *domain.Assessment) (*domain.Assessment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *a
	created.ID = primitive.NewObjectID().Hex()
	if _, err := r.coll.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	return &created, nil
}

func (r *AssessmentRepository) FindByID(ctx context.Context, orgID, id string) (*domain.Assessment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	if orgID != "" {
		filter["organization_id"] = orgID
	}

	var a domain.Assessment
	if err := r.coll.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &a, nil
}

func (r *AssessmentRepository) ListByOrganization(ctx context.Context, orgID string) ([]*domain.Assessment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Assessment
	for cur.Next(ctx) {
		var a domain.Assessment
		if err := cur.Decode(&a); err != nil {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		out = append(out, &a)
	}
	return out, cur.Err()
}

func (r *AssessmentRepository) Update(ctx context.Context, a *domain.Assessment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": a.ID, "organization_id": a.OrganizationID}, a)
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAssessmentNotFound
	}
	return nil
}

func (r *AssessmentRepository) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the organization index used by list and count queries.
func (r *AssessmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "organization_id", Value: 1}},
	})
	return err
}
