package domain

import (
	"testing"
	"time"
)

func TestInvitationTransitions(t *testing.T) {
	allowed := []struct {
		from, to InvitationStatus
	}{
		{InvitationPending, InvitationStarted},
		{InvitationPending, InvitationExpired},
		{InvitationPending, InvitationRevoked},
		{InvitationStarted, InvitationCompleted},
		{InvitationStarted, InvitationExpired},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransitionTo(tr.to) {
			t.Fatalf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct {
		from, to InvitationStatus
	}{
		{InvitationPending, InvitationCompleted},
		{InvitationStarted, InvitationRevoked},
		{InvitationStarted, InvitationPending},
		{InvitationCompleted, InvitationStarted},
		{InvitationExpired, InvitationStarted},
		{InvitationRevoked, InvitationPending},
	}
	for _, tr := range denied {
		if tr.from.CanTransitionTo(tr.to) {
			t.Fatalf("expected %s -> %s to be denied", tr.from, tr.to)
		}
	}
}

func TestInvitationExpiredAt(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := &Invitation{ExpiresAt: deadline}

	if inv.ExpiredAt(deadline.Add(-time.Minute)) {
		t.Fatalf("invitation should not be expired before the deadline")
	}
	if inv.ExpiredAt(deadline) {
		t.Fatalf("invitation should not be expired exactly at the deadline")
	}
	if !inv.ExpiredAt(deadline.Add(time.Second)) {
		t.Fatalf("invitation should be expired after the deadline")
	}
}

func intPtr(i int) *int { return &i }

func TestScore(t *testing.T) {
	assessment := &Assessment{
		Questions: []Question{
			{ID: "q1", Kind: QuestionMultipleChoice, Options: []string{"a", "b", "c"}, CorrectOption: 1, Points: 5},
			{ID: "q2", Kind: QuestionTrueFalse, CorrectOption: 0, Points: 2},
			{ID: "q3", Kind: QuestionShortText, Points: 10},
		},
	}

	answers := []Answer{
		{QuestionID: "q1", SelectedOption: intPtr(1)},
		{QuestionID: "q2", SelectedOption: intPtr(1)},
		{QuestionID: "q3", Text: "interfaces describe behaviour"},
	}

	total, breakdown, needsReview := Score(assessment, answers)

	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if !needsReview {
		t.Fatalf("short text answer should flag the submission for review")
	}
	if len(breakdown) != 3 {
		t.Fatalf("expected 3 results, got %d", len(breakdown))
	}
	if !breakdown[0].Correct || breakdown[0].Points != 5 {
		t.Fatalf("q1 should be correct with 5 points: %+v", breakdown[0])
	}
	if breakdown[1].Correct || breakdown[1].Points != 0 {
		t.Fatalf("q2 should be wrong with 0 points: %+v", breakdown[1])
	}
	if !breakdown[2].NeedsReview || breakdown[2].Points != 0 {
		t.Fatalf("q3 should need review with 0 points: %+v", breakdown[2])
	}
}

func TestScoreUnansweredQuestions(t *testing.T) {
	assessment := &Assessment{
		Questions: []Question{
			{ID: "q1", Kind: QuestionMultipleChoice, Options: []string{"a", "b"}, CorrectOption: 0, Points: 3},
			{ID: "q2", Kind: QuestionShortText, Points: 5},
		},
	}

	total, breakdown, needsReview := Score(assessment, nil)

	if total != 0 {
		t.Fatalf("expected total 0, got %d", total)
	}
	if needsReview {
		t.Fatalf("empty short text answer should not need review")
	}
	for _, r := range breakdown {
		if r.Correct || r.Points != 0 {
			t.Fatalf("unanswered question scored: %+v", r)
		}
	}
}

func TestScoreIgnoresUnknownAnswers(t *testing.T) {
	assessment := &Assessment{
		Questions: []Question{
			{ID: "q1", Kind: QuestionTrueFalse, CorrectOption: 1, Points: 2},
		},
	}
	answers := []Answer{
		{QuestionID: "q1", SelectedOption: intPtr(1)},
		{QuestionID: "ghost", SelectedOption: intPtr(0)},
	}

	total, breakdown, _ := Score(assessment, answers)
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(breakdown) != 1 {
		t.Fatalf("answers for unknown questions must not produce results, got %d", len(breakdown))
	}
}
