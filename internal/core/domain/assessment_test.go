package domain

import "testing"

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{
			name: "valid multiple choice",
			q:    Question{Text: "2+2?", Kind: QuestionMultipleChoice, Options: []string{"3", "4"}, CorrectOption: 1, Points: 5},
		},
		{
			name:    "multiple choice with one option",
			q:       Question{Text: "2+2?", Kind: QuestionMultipleChoice, Options: []string{"4"}, Points: 5},
			wantErr: true,
		},
		{
			name:    "multiple choice with out of range answer",
			q:       Question{Text: "2+2?", Kind: QuestionMultipleChoice, Options: []string{"3", "4"}, CorrectOption: 2, Points: 5},
			wantErr: true,
		},
		{
			name: "valid true false",
			q:    Question{Text: "Go has generics", Kind: QuestionTrueFalse, CorrectOption: 0, Points: 1},
		},
		{
			name:    "true false with bad answer index",
			q:       Question{Text: "Go has generics", Kind: QuestionTrueFalse, CorrectOption: 3, Points: 1},
			wantErr: true,
		},
		{
			name: "valid short text",
			q:    Question{Text: "Explain interfaces", Kind: QuestionShortText, Points: 10},
		},
		{
			name:    "empty text",
			q:       Question{Kind: QuestionShortText, Points: 1},
			wantErr: true,
		},
		{
			name:    "zero points",
			q:       Question{Text: "x", Kind: QuestionShortText},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			q:       Question{Text: "x", Kind: "essay", Points: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr && err != ErrInvalidQuestion {
				t.Fatalf("expected ErrInvalidQuestion, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAssessmentEditable(t *testing.T) {
	if !(&Assessment{Status: AssessmentDraft}).Editable() {
		t.Fatalf("draft assessment should be editable")
	}
	if (&Assessment{Status: AssessmentPublished}).Editable() {
		t.Fatalf("published assessment should not be editable")
	}
	if (&Assessment{Status: AssessmentArchived}).Editable() {
		t.Fatalf("archived assessment should not be editable")
	}
}

func TestAssessmentMaxScore(t *testing.T) {
	a := &Assessment{Questions: []Question{{Points: 5}, {Points: 3}, {Points: 2}}}
	if got := a.MaxScore(); got != 10 {
		t.Fatalf("expected max score 10, got %d", got)
	}
	if got := (&Assessment{}).MaxScore(); got != 0 {
		t.Fatalf("expected max score 0 for empty assessment, got %d", got)
	}
}
