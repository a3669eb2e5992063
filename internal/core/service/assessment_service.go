package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

// Entitlements resolves the effective plan limits for an organization.
// *BillingService satisfies this; tests use a fixed-limit stub.
type Entitlements interface {
	Entitlements(ctx context.Context, orgID string) domain.Entitlements
}

// AssessmentService implements assessment and question management with
// per-plan entitlement enforcement.
type AssessmentService struct {
	repo    ports.AssessmentRepository
	billing Entitlements
	log     zerolog.Logger
}

func NewAssessmentService(repo ports.AssessmentRepository, billing Entitlements, log zerolog.Logger) *AssessmentService {
	return &AssessmentService{repo: repo, billing: billing, log: log}
}

// Create adds a new draft assessment, enforcing the plan's assessment cap.
func (s *AssessmentService) Create(ctx context.Context, in ports.CreateAssessmentInput) (*domain.Assessment, error) {
	if in.Title == "" {
		return nil, domain.ErrInvalidQuestion
	}

	limits := s.billing.Entitlements(ctx, in.OrganizationID)
	count, err := s.repo.CountByOrganization(ctx, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if count >= int64(limits.MaxAssessments) {
		return nil, domain.ErrPlanLimitReached
	}

	now := time.Now().UTC()
	a := &domain.Assessment{
		OrganizationID:  in.OrganizationID,
		Title:           in.Title,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Status:          domain.AssessmentDraft,
		Questions:       []domain.Question{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		s.log.Error().Err(err).Str("org_id", in.OrganizationID).Msg("failed to create assessment")
		return nil, err
	}

	s.log.Info().Str("assessment_id", created.ID).Str("org_id", in.OrganizationID).Msg("assessment created")
	return created, nil
}

func (s *AssessmentService) Get(ctx context.Context, orgID, id string) (*domain.Assessment, error) {
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *AssessmentService) List(ctx context.Context, orgID string) ([]*domain.Assessment, error) {
	return s.repo.ListByOrganization(ctx, orgID)
}

// Update edits the title, description, and duration of a draft assessment.
// Published and archived assessments are frozen.
func (s *AssessmentService) Update(ctx context.Context, in ports.UpdateAssessmentInput) (*domain.Assessment, error) {
	a, err := s.repo.FindByID(ctx, in.OrganizationID, in.AssessmentID)
	if err != nil {
		return nil, err
	}
	if !a.Editable() {
		return nil, domain.ErrAssessmentNotEditable
	}

	a.Title = in.Title
	a.Description = in.Description
	a.DurationMinutes = in.DurationMinutes
	a.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AddQuestion appends a question to a draft assessment, enforcing both
// question validity and the plan's per-assessment question cap.
func (s *AssessmentService) AddQuestion(ctx context.Context, in ports.AddQuestionInput) (*domain.Assessment, error) {
	if err := in.Question.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.FindByID(ctx, in.OrganizationID, in.AssessmentID)
	if err != nil {
		return nil, err
	}
	if !a.Editable() {
		return nil, domain.ErrAssessmentNotEditable
	}

	limits := s.billing.Entitlements(ctx, in.OrganizationID)
	if len(a.Questions) >= limits.MaxQuestionsPerAssessment {
		return nil, domain.ErrPlanLimitReached
	}

	q := in.Question
	q.ID = uuid.NewString()
	a.Questions = append(a.Questions, q)
	a.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RemoveQuestion deletes a question from a draft assessment.
func (s *AssessmentService) RemoveQuestion(ctx context.Context, orgID, assessmentID, questionID string) (*domain.Assessment, error) {
	a, err := s.repo.FindByID(ctx, orgID, assessmentID)
	if err != nil {
		return nil, err
	}
	if !a.Editable() {
		return nil, domain.ErrAssessmentNotEditable
	}

	kept := a.Questions[:0]
	found := false
	for _, q := range a.Questions {
		if q.ID == questionID {
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return nil, domain.ErrQuestionNotFound
	}

	a.Questions = kept
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Publish moves a draft with at least one question into the published state.
func (s *AssessmentService) Publish(ctx context.Context, orgID, id string) (*domain.Assessment, error) {
	a, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AssessmentDraft || len(a.Questions) == 0 {
		return nil, domain.ErrAssessmentNotEditable
	}

	a.Status = domain.AssessmentPublished
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info().Str("assessment_id", a.ID).Msg("assessment published")
	return a, nil
}

// Archive retires a published assessment. New invitations are refused for
// archived assessments; existing ones keep working.
func (s *AssessmentService) Archive(ctx context.Context, orgID, id string) (*domain.Assessment, error) {
	a, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AssessmentPublished {
		return nil, domain.ErrAssessmentNotEditable
	}

	a.Status = domain.AssessmentArchived
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
