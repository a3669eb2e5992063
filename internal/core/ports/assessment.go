package ports

import (
	"context"

	"github.com/assessly/assessment-api/internal/core/domain"
)

// CreateAssessmentInput is the service DTO for creating an assessment.
type CreateAssessmentInput struct {
	OrganizationID  string
	Title           string
	Description     string
	DurationMinutes int
}

// UpdateAssessmentInput carries the editable fields of a draft assessment.
type UpdateAssessmentInput struct {
	OrganizationID  string
	AssessmentID    string
	Title           string
	Description     string
	DurationMinutes int
}

// AddQuestionInput is the service DTO for appending a question to a draft.
type AddQuestionInput struct {
	OrganizationID string
	AssessmentID   string
	Question       domain.Question
}

type AssessmentService interface {
	Create(ctx context.Context, in CreateAssessmentInput) (*domain.Assessment, error)
	Get(ctx context.Context, orgID, id string) (*domain.Assessment, error)
	List(ctx context.Context, orgID string) ([]*domain.Assessment, error)
	Update(ctx context.Context, in UpdateAssessmentInput) (*domain.Assessment, error)
	AddQuestion(ctx context.Context, in AddQuestionInput) (*domain.Assessment, error)
	RemoveQuestion(ctx context.Context, orgID, assessmentID, questionID string) (*domain.Assessment, error)
	Publish(ctx context.Context, orgID, id string) (*domain.Assessment, error)
	Archive(ctx context.Context, orgID, id string) (*domain.Assessment, error)
}

// AssessmentRepository defines assessment persistence.
type AssessmentRepository interface {
	Create(ctx context.Context, a *domain.Assessment) (*domain.Assessment, error)
	FindByID(ctx context.Context, orgID, id string) (*domain.Assessment, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*domain.Assessment, error)
	Update(ctx context.Context, a *domain.Assessment) error
	CountByOrganization(ctx context.Context, orgID string) (int64, error)
}
