package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

const defaultInvitationTTL = 14 * 24 * time.Hour

// InvitationService implements candidate invitations, attempt lifecycle, and
// scoring.
type InvitationService struct {
	invitations ports.InvitationRepository
	submissions ports.SubmissionRepository
	assessments ports.AssessmentRepository
	billing     Entitlements
	email       ports.EmailSender
	baseURL     string
	log         zerolog.Logger
}

func NewInvitationService(
	invitations ports.InvitationRepository,
	submissions ports.SubmissionRepository,
	assessments ports.AssessmentRepository,
	billing Entitlements,
	email ports.EmailSender,
	baseURL string,
	log zerolog.Logger,
) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		submissions: submissions,
		assessments: assessments,
		billing:     billing,
		email:       email,
		baseURL:     baseURL,
		log:         log,
	}
}

// Create invites a candidate to a published assessment. The invite email is
// best effort: a delivery failure is logged, not returned.
func (s *InvitationService) Create(ctx context.Context, in ports.CreateInvitationInput) (*domain.Invitation, error) {
	a, err := s.assessments.FindByID(ctx, in.OrganizationID, in.AssessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AssessmentPublished {
		return nil, domain.ErrAssessmentNotEditable
	}

	limits := s.billing.Entitlements(ctx, in.OrganizationID)
	count, err := s.invitations.CountByOrganization(ctx, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if count >= int64(limits.MaxCandidates) {
		return nil, domain.ErrPlanLimitReached
	}

	now := time.Now().UTC()
	inv := &domain.Invitation{
		OrganizationID: in.OrganizationID,
		AssessmentID:   in.AssessmentID,
		CandidateEmail: in.CandidateEmail,
		CandidateName:  in.CandidateName,
		Token:          uuid.NewString(),
		Status:         domain.InvitationPending,
		ExpiresAt:      now.Add(defaultInvitationTTL),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.invitations.Create(ctx, inv)
	if err != nil {
		return nil, err
	}

	inviteURL := fmt.Sprintf("%s/invitations/%s", s.baseURL, created.Token)
	if err := s.email.SendInvitation(ctx, created.CandidateEmail, created.CandidateName, a.Title, inviteURL); err != nil {
		s.log.Warn().Err(err).Str("invitation_id", created.ID).Msg("invitation email failed")
	}

	s.log.Info().
		Str("invitation_id", created.ID).
		Str("assessment_id", in.AssessmentID).
		Msg("invitation created")
	return created, nil
}

// Start marks a pending invitation as started and returns the assessment with
// correct answers stripped.
func (s *InvitationService) Start(ctx context.Context, tok string) (*ports.StartResult, error) {
	inv, err := s.invitations.FindByToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if inv.ExpiredAt(now) {
		s.markExpired(ctx, inv, now)
		return nil, domain.ErrInvitationExpired
	}
	if !inv.Status.CanTransitionTo(domain.InvitationStarted) {
		return nil, domain.ErrInvalidTransition
	}

	a, err := s.assessments.FindByID(ctx, inv.OrganizationID, inv.AssessmentID)
	if err != nil {
		return nil, err
	}

	inv.Status = domain.InvitationStarted
	inv.StartedAt = &now
	inv.UpdatedAt = now
	if err := s.invitations.Update(ctx, inv); err != nil {
		return nil, err
	}

	return &ports.StartResult{Invitation: inv, Assessment: stripAnswers(a)}, nil
}

// Submit scores the answers and completes the invitation. Resubmission of a
// completed invitation is rejected.
func (s *InvitationService) Submit(ctx context.Context, tok string, answers []domain.Answer) (*domain.Submission, error) {
	inv, err := s.invitations.FindByToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if inv.Status == domain.InvitationCompleted {
		return nil, domain.ErrAlreadySubmitted
	}
	if inv.ExpiredAt(now) {
		s.markExpired(ctx, inv, now)
		return nil, domain.ErrInvitationExpired
	}
	if !inv.Status.CanTransitionTo(domain.InvitationCompleted) {
		return nil, domain.ErrInvalidTransition
	}

	a, err := s.assessments.FindByID(ctx, inv.OrganizationID, inv.AssessmentID)
	if err != nil {
		return nil, err
	}

	score, breakdown, needsReview := domain.Score(a, answers)
	maxScore := a.MaxScore()
	sub := &domain.Submission{
		InvitationID: inv.ID,
		AssessmentID: a.ID,
		Answers:      answers,
		Score:        score,
		MaxScore:     maxScore,
		Breakdown:    breakdown,
		NeedsReview:  needsReview,
		SubmittedAt:  now,
	}
	if maxScore > 0 {
		sub.Percent = 100 * float64(score) / float64(maxScore)
	}

	created, err := s.submissions.Create(ctx, sub)
	if err != nil {
		return nil, err
	}

	inv.Status = domain.InvitationCompleted
	inv.CompletedAt = &now
	inv.UpdatedAt = now
	if err := s.invitations.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invitation_id", inv.ID).
		Int("score", score).
		Int("max_score", maxScore).
		Msg("submission scored")
	return created, nil
}

// Result returns the scored submission for a completed invitation.
func (s *InvitationService) Result(ctx context.Context, orgID, invitationID string) (*domain.Submission, error) {
	inv, err := s.invitations.FindByID(ctx, orgID, invitationID)
	if err != nil {
		return nil, err
	}
	return s.submissions.FindByInvitationID(ctx, inv.ID)
}

// Revoke withdraws a pending invitation.
func (s *InvitationService) Revoke(ctx context.Context, orgID, invitationID string) error {
	inv, err := s.invitations.FindByID(ctx, orgID, invitationID)
	if err != nil {
		return err
	}
	if !inv.Status.CanTransitionTo(domain.InvitationRevoked) {
		return domain.ErrInvalidTransition
	}

	inv.Status = domain.InvitationRevoked
	inv.UpdatedAt = time.Now().UTC()
	return s.invitations.Update(ctx, inv)
}

// markExpired persists the expired state lazily, on first access after the
// deadline. Failures here are non-fatal: the caller already rejects.
func (s *InvitationService) markExpired(ctx context.Context, inv *domain.Invitation, now time.Time) {
	if !inv.Status.CanTransitionTo(domain.InvitationExpired) {
		return
	}
	inv.Status = domain.InvitationExpired
	inv.UpdatedAt = now
	if err := s.invitations.Update(ctx, inv); err != nil {
		s.log.Warn().Err(err).Str("invitation_id", inv.ID).Msg("failed to persist expiry")
	}
}

// stripAnswers returns a copy of the assessment safe to show a candidate.
func stripAnswers(a *domain.Assessment) *domain.Assessment {
	out := *a
	out.Questions = make([]domain.Question, len(a.Questions))
	for i, q := range a.Questions {
		q.CorrectOption = 0
		out.Questions[i] = q
	}
	return &out
}
