package domain

import (
	"errors"
	"time"
)

// AssessmentStatus represents the lifecycle state of an assessment.
type AssessmentStatus string

const (
	AssessmentDraft     AssessmentStatus = "draft"
	AssessmentPublished AssessmentStatus = "published"
	AssessmentArchived  AssessmentStatus = "archived"
)

// QuestionKind determines how a question is presented and scored.
type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "multiple_choice"
	QuestionTrueFalse      QuestionKind = "true_false"
	QuestionShortText      QuestionKind = "short_text"
)

var ErrAssessmentNotFound = errors.New("assessment not found")
var ErrAssessmentNotEditable = errors.New("assessment is not editable")
var ErrQuestionNotFound = errors.New("question not found")
var ErrInvalidQuestion = errors.New("invalid question")
var ErrPlanLimitReached = errors.New("plan limit reached")

// Question is a single item within an assessment. For choice kinds the
// CorrectOption index points into Options; short_text answers are collected
// for manual review and carry no automatic score.
type Question struct {
	ID            string       `json:"id" bson:"id"`
	Text          string       `json:"text" bson:"text"`
	Kind          QuestionKind `json:"kind" bson:"kind"`
	Options       []string     `json:"options,omitempty" bson:"options,omitempty"`
	CorrectOption int          `json:"-" bson:"correct_option"`
	Points        int          `json:"points" bson:"points"`
}

// Validate checks the structural rules for a question of its kind.
func (q Question) Validate() error {
	if q.Text == "" || q.Points <= 0 {
		return ErrInvalidQuestion
	}
	switch q.Kind {
	case QuestionMultipleChoice:
		if len(q.Options) < 2 || q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return ErrInvalidQuestion
		}
	case QuestionTrueFalse:
		if q.CorrectOption != 0 && q.CorrectOption != 1 {
			return ErrInvalidQuestion
		}
	case QuestionShortText:
		// free-form, nothing structural to check
	default:
		return ErrInvalidQuestion
	}
	return nil
}

// Assessment is the aggregate root for a test an organization runs against
// candidates. Questions are embedded; they never exist outside an assessment.
type Assessment struct {
	ID              string           `json:"id" bson:"_id,omitempty"`
	OrganizationID  string           `json:"organization_id" bson:"organization_id"`
	Title           string           `json:"title" bson:"title"`
	Description     string           `json:"description,omitempty" bson:"description,omitempty"`
	DurationMinutes int              `json:"duration_minutes" bson:"duration_minutes"`
	Status          AssessmentStatus `json:"status" bson:"status"`
	Questions       []Question       `json:"questions" bson:"questions"`
	CreatedAt       time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" bson:"updated_at"`
}

// Editable reports whether questions may still be added or removed.
func (a *Assessment) Editable() bool {
	return a.Status == AssessmentDraft
}

// MaxScore is the sum of points across all questions.
func (a *Assessment) MaxScore() int {
	total := 0
	for _, q := range a.Questions {
		total += q.Points
	}
	return total
}
