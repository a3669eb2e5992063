package handler

import "github.com/assessly/assessment-api/internal/core/domain"

type createInvitationRequest struct {
	AssessmentID   string `json:"assessment_id"   validate:"required"`
	CandidateEmail string `json:"candidate_email" validate:"required,email"`
	CandidateName  string `json:"candidate_name"`
}

type answerRequest struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedOption *int   `json:"selected_option,omitempty"`
	Text           string `json:"text,omitempty"`
}

type submitRequest struct {
	Answers []answerRequest `json:"answers" validate:"required,min=1,dive"`
}

type startResponse struct {
	Invitation *domain.Invitation `json:"invitation"`
	Assessment *domain.Assessment `json:"assessment"`
}
