package domain

import (
	"errors"
	"time"
)

// InvitationStatus represents the lifecycle state of a candidate invitation.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationStarted   InvitationStatus = "started"
	InvitationCompleted InvitationStatus = "completed"
	InvitationExpired   InvitationStatus = "expired"
	InvitationRevoked   InvitationStatus = "revoked"
)

// validInvitationTransitions defines the allowed state machine transitions.
var validInvitationTransitions = map[InvitationStatus][]InvitationStatus{
	InvitationPending: {InvitationStarted, InvitationExpired, InvitationRevoked},
	InvitationStarted: {InvitationCompleted, InvitationExpired},
}

var ErrInvitationNotFound = errors.New("invitation not found")
var ErrInvitationExpired = errors.New("invitation expired")
var ErrInvalidTransition = errors.New("invalid invitation transition")
var ErrAlreadySubmitted = errors.New("invitation already submitted")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s InvitationStatus) CanTransitionTo(next InvitationStatus) bool {
	for _, allowed := range validInvitationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Invitation links a candidate (identified only by email, no account) to a
// published assessment through an opaque single-use token.
type Invitation struct {
	ID             string           `json:"id" bson:"_id,omitempty"`
	OrganizationID string           `json:"organization_id" bson:"organization_id"`
	AssessmentID   string           `json:"assessment_id" bson:"assessment_id"`
	CandidateEmail string           `json:"candidate_email" bson:"candidate_email"`
	CandidateName  string           `json:"candidate_name,omitempty" bson:"candidate_name,omitempty"`
	Token          string           `json:"-" bson:"token"`
	Status         InvitationStatus `json:"status" bson:"status"`
	ExpiresAt      time.Time        `json:"expires_at" bson:"expires_at"`
	StartedAt      *time.Time       `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" bson:"updated_at"`
}

// ExpiredAt reports whether the invitation deadline has passed at the given instant.
func (i *Invitation) ExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Answer is a candidate's response to a single question. SelectedOption is
// used by choice kinds, Text by short_text.
type Answer struct {
	QuestionID     string `json:"question_id" bson:"question_id"`
	SelectedOption *int   `json:"selected_option,omitempty" bson:"selected_option,omitempty"`
	Text           string `json:"text,omitempty" bson:"text,omitempty"`
}

// QuestionResult is the scored outcome for one question.
type QuestionResult struct {
	QuestionID  string `json:"question_id" bson:"question_id"`
	Correct     bool   `json:"correct" bson:"correct"`
	Points      int    `json:"points" bson:"points"`
	MaxPoints   int    `json:"max_points" bson:"max_points"`
	NeedsReview bool   `json:"needs_review,omitempty" bson:"needs_review,omitempty"`
}

// Submission stores a candidate's answers and the computed result.
type Submission struct {
	ID           string           `json:"id" bson:"_id,omitempty"`
	InvitationID string           `json:"invitation_id" bson:"invitation_id"`
	AssessmentID string           `json:"assessment_id" bson:"assessment_id"`
	Answers      []Answer         `json:"answers" bson:"answers"`
	Score        int              `json:"score" bson:"score"`
	MaxScore     int              `json:"max_score" bson:"max_score"`
	Percent      float64          `json:"percent" bson:"percent"`
	Breakdown    []QuestionResult `json:"breakdown" bson:"breakdown"`
	NeedsReview  bool             `json:"needs_review" bson:"needs_review"`
	SubmittedAt  time.Time        `json:"submitted_at" bson:"submitted_at"`
}

// Score grades the given answers against the assessment's questions.
// Choice kinds are compared to the stored correct option; short_text answers
// score zero and flag the submission for manual review.
func Score(assessment *Assessment, answers []Answer) (int, []QuestionResult, bool) {
	byQuestion := make(map[string]Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	total := 0
	needsReview := false
	breakdown := make([]QuestionResult, 0, len(assessment.Questions))

	for _, q := range assessment.Questions {
		res := QuestionResult{QuestionID: q.ID, MaxPoints: q.Points}
		ans, answered := byQuestion[q.ID]

		switch q.Kind {
		case QuestionMultipleChoice, QuestionTrueFalse:
			if answered && ans.SelectedOption != nil && *ans.SelectedOption == q.CorrectOption {
				res.Correct = true
				res.Points = q.Points
				total += q.Points
			}
		case QuestionShortText:
			if answered && ans.Text != "" {
				res.NeedsReview = true
				needsReview = true
			}
		}

		breakdown = append(breakdown, res)
	}

	return total, breakdown, needsReview
}
