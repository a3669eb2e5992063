package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

func newAssessmentFixture(limits domain.Entitlements) (*AssessmentService, *stubAssessmentRepo) {
	repo := newStubAssessmentRepo()
	svc := NewAssessmentService(repo, fixedEntitlements{limits: limits}, zerolog.Nop())
	return svc, repo
}

func validQuestion() domain.Question {
	return domain.Question{
		Text:          "2+2?",
		Kind:          domain.QuestionMultipleChoice,
		Options:       []string{"3", "4"},
		CorrectOption: 1,
		Points:        5,
	}
}

func TestAssessmentService_Create(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.FreeEntitlements())

	a, err := svc.Create(context.Background(), ports.CreateAssessmentInput{
		OrganizationID:  "org_1",
		Title:           "Backend Screening",
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if a.Status != domain.AssessmentDraft {
		t.Fatalf("new assessments start as drafts, got %s", a.Status)
	}
	if len(a.Questions) != 0 {
		t.Fatalf("new assessments start empty")
	}
}

func TestAssessmentService_Create_PlanLimit(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.Entitlements{MaxAssessments: 1, MaxQuestionsPerAssessment: 10})

	if _, err := svc.Create(context.Background(), ports.CreateAssessmentInput{
		OrganizationID: "org_1", Title: "First",
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), ports.CreateAssessmentInput{
		OrganizationID: "org_1", Title: "Second",
	}); err != domain.ErrPlanLimitReached {
		t.Fatalf("expected ErrPlanLimitReached, got %v", err)
	}

	// Another organization is not affected by the first one's limit.
	if _, err := svc.Create(context.Background(), ports.CreateAssessmentInput{
		OrganizationID: "org_2", Title: "Other org",
	}); err != nil {
		t.Fatalf("limit must be per organization: %v", err)
	}
}

func TestAssessmentService_Update(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.FreeEntitlements())

	a, err := svc.Create(context.Background(), ports.CreateAssessmentInput{
		OrganizationID: "org_1", Title: "Draft title", DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), ports.UpdateAssessmentInput{
		OrganizationID:  "org_1",
		AssessmentID:    a.ID,
		Title:           "Final title",
		Description:     "Screening round",
		DurationMinutes: 90,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "Final title" || updated.DurationMinutes != 90 {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestAssessmentService_Update_FrozenAfterPublish(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.FreeEntitlements())

	a, err := svc.Create(context.Background(), ports.CreateAssessmentInput{
		OrganizationID: "org_1", Title: "T", DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.AddQuestion(context.Background(), ports.AddQuestionInput{
		OrganizationID: "org_1", AssessmentID: a.ID, Question: validQuestion(),
	}); err != nil {
		t.Fatalf("add question failed: %v", err)
	}
	if _, err := svc.Publish(context.Background(), "org_1", a.ID); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if _, err := svc.Update(context.Background(), ports.UpdateAssessmentInput{
		OrganizationID: "org_1", AssessmentID: a.ID, Title: "Too late", DurationMinutes: 45,
	}); err != domain.ErrAssessmentNotEditable {
		t.Fatalf("expected ErrAssessmentNotEditable, got %v", err)
	}
}

func TestAssessmentService_AddQuestion(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.FreeEntitlements())

	a, err := svc.Create(context.Background(), ports.CreateAssessmentInput{OrganizationID: "org_1", Title: "T"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.AddQuestion(context.Background(), ports.AddQuestionInput{
		OrganizationID: "org_1",
		AssessmentID:   a.ID,
		Question:       validQuestion(),
	})
	if err != nil {
		t.Fatalf("AddQuestion returned error: %v", err)
	}
	if len(updated.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(updated.Questions))
	}
	if updated.Questions[0].ID == "" {
		t.Fatalf("question should receive a generated id")
	}
}

func TestAssessmentService_AddQuestion_Invalid(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.FreeEntitlements())

	a, _ := svc.Create(context.Background(), ports.CreateAssessmentInput{OrganizationID: "org_1", Title: "T"})
	q := validQuestion()
	q.Text = ""
	if _, err := svc.AddQuestion(context.Background(), ports.AddQuestionInput{
		OrganizationID: "org_1", AssessmentID: a.ID, Question: q,
	}); err != domain.ErrInvalidQuestion {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}
}

func TestAssessmentService_AddQuestion_QuestionLimit(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.Entitlements{MaxAssessments: 10, MaxQuestionsPerAssessment: 1})

	a, _ := svc.Create(context.Background(), ports.CreateAssessmentInput{OrganizationID: "org_1", Title: "T"})
	if _, err := svc.AddQuestion(context.Background(), ports.AddQuestionInput{
		OrganizationID: "org_1", AssessmentID: a.ID, Question: validQuestion(),
	}); err != nil {
		t.Fatalf("first question failed: %v", err)
	}
	if _, err := svc.AddQuestion(context.Background(), ports.AddQuestionInput{
		OrganizationID: "org_1", AssessmentID: a.ID, Question: validQuestion(),
	}); err != domain.ErrPlanLimitReached {
		t.Fatalf("expected ErrPlanLimitReached, got %v", err)
	}
}

func TestAssessmentService_PublishLifecycle(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.FreeEntitlements())

	a, _ := svc.Create(context.Background(), ports.CreateAssessmentInput{OrganizationID: "org_1", Title: "T"})

	// Publishing an empty draft is refused.
	if _, err := svc.Publish(context.Background(), "org_1", a.ID); err != domain.ErrAssessmentNotEditable {
		t.Fatalf("expected ErrAssessmentNotEditable for empty draft, got %v", err)
	}

	if _, err := svc.AddQuestion(context.Background(), ports.AddQuestionInput{
		OrganizationID: "org_1", AssessmentID: a.ID, Question: validQuestion(),
	}); err != nil {
		t.Fatalf("add question failed: %v", err)
	}

	published, err := svc.Publish(context.Background(), "org_1", a.ID)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if published.Status != domain.AssessmentPublished {
		t.Fatalf("expected published status, got %s", published.Status)
	}

	// Published assessments are frozen.
	if _, err := svc.AddQuestion(context.Background(), ports.AddQuestionInput{
		OrganizationID: "org_1", AssessmentID: a.ID, Question: validQuestion(),
	}); err != domain.ErrAssessmentNotEditable {
		t.Fatalf("expected ErrAssessmentNotEditable after publish, got %v", err)
	}

	archived, err := svc.Archive(context.Background(), "org_1", a.ID)
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if archived.Status != domain.AssessmentArchived {
		t.Fatalf("expected archived status, got %s", archived.Status)
	}

	// Drafts cannot be archived, archived cannot be published.
	if _, err := svc.Publish(context.Background(), "org_1", a.ID); err != domain.ErrAssessmentNotEditable {
		t.Fatalf("expected ErrAssessmentNotEditable, got %v", err)
	}
}

func TestAssessmentService_RemoveQuestion(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.FreeEntitlements())

	a, _ := svc.Create(context.Background(), ports.CreateAssessmentInput{OrganizationID: "org_1", Title: "T"})
	withQ, err := svc.AddQuestion(context.Background(), ports.AddQuestionInput{
		OrganizationID: "org_1", AssessmentID: a.ID, Question: validQuestion(),
	})
	if err != nil {
		t.Fatalf("add question failed: %v", err)
	}

	updated, err := svc.RemoveQuestion(context.Background(), "org_1", a.ID, withQ.Questions[0].ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(updated.Questions) != 0 {
		t.Fatalf("expected no questions left, got %d", len(updated.Questions))
	}

	if _, err := svc.RemoveQuestion(context.Background(), "org_1", a.ID, "missing"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestAssessmentService_TenantIsolation(t *testing.T) {
	svc, _ := newAssessmentFixture(domain.FreeEntitlements())

	a, _ := svc.Create(context.Background(), ports.CreateAssessmentInput{OrganizationID: "org_1", Title: "T"})
	if _, err := svc.Get(context.Background(), "org_2", a.ID); err != domain.ErrAssessmentNotFound {
		t.Fatalf("expected ErrAssessmentNotFound across organizations, got %v", err)
	}
}
