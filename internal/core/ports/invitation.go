package ports

import (
	"context"

	"github.com/assessly/assessment-api/internal/core/domain"
)

// CreateInvitationInput is the service DTO for inviting a candidate.
type CreateInvitationInput struct {
	OrganizationID string
	AssessmentID   string
	CandidateEmail string
	CandidateName  string
}

// StartResult is what a candidate sees when opening an invite link: the
// assessment with answers stripped.
type StartResult struct {
	Invitation *domain.Invitation
	Assessment *domain.Assessment
}

type InvitationService interface {
	Create(ctx context.Context, in CreateInvitationInput) (*domain.Invitation, error)
	Start(ctx context.Context, token string) (*StartResult, error)
	Submit(ctx context.Context, token string, answers []domain.Answer) (*domain.Submission, error)
	Result(ctx context.Context, orgID, invitationID string) (*domain.Submission, error)
	Revoke(ctx context.Context, orgID, invitationID string) error
}

// InvitationRepository defines invitation persistence.
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)
	FindByToken(ctx context.Context, token string) (*domain.Invitation, error)
	FindByID(ctx context.Context, orgID, id string) (*domain.Invitation, error)
	Update(ctx context.Context, inv *domain.Invitation) error
	CountByOrganization(ctx context.Context, orgID string) (int64, error)
}

// SubmissionRepository defines submission persistence.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) (*domain.Submission, error)
	FindByInvitationID(ctx context.Context, invitationID string) (*domain.Submission, error)
}
