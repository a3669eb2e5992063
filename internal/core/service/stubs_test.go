package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

// --- users ---

type stubUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	created := *user
	created.ID = "user_" + strconv.Itoa(r.nextID)
	r.byID[created.ID] = &created
	r.byEmail[created.Email] = &created
	out := created
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// --- organizations ---

type stubOrgRepo struct {
	orgs   map[string]*domain.Organization
	nextID int
}

func newStubOrgRepo() *stubOrgRepo {
	return &stubOrgRepo{orgs: make(map[string]*domain.Organization)}
}

func (r *stubOrgRepo) Create(_ context.Context, org *domain.Organization) (*domain.Organization, error) {
	r.nextID++
	created := *org
	created.ID = "org_" + strconv.Itoa(r.nextID)
	r.orgs[created.ID] = &created
	out := created
	return &out, nil
}

func (r *stubOrgRepo) FindByID(_ context.Context, id string) (*domain.Organization, error) {
	org, ok := r.orgs[id]
	if !ok {
		return nil, domain.ErrOrganizationNotFound
	}
	out := *org
	return &out, nil
}

func (r *stubOrgRepo) SetOwner(_ context.Context, id, userID string) error {
	org, ok := r.orgs[id]
	if !ok {
		return domain.ErrOrganizationNotFound
	}
	org.OwnerUserID = userID
	return nil
}

func (r *stubOrgRepo) SetStripeCustomerID(_ context.Context, id, customerID string) error {
	org, ok := r.orgs[id]
	if !ok {
		return domain.ErrOrganizationNotFound
	}
	org.StripeCustomerID = customerID
	return nil
}

func (r *stubOrgRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.orgs[id]; !ok {
		return domain.ErrOrganizationNotFound
	}
	delete(r.orgs, id)
	return nil
}

// --- assessments ---

type stubAssessmentRepo struct {
	assessments map[string]*domain.Assessment
	nextID      int
}

func newStubAssessmentRepo() *stubAssessmentRepo {
	return &stubAssessmentRepo{assessments: make(map[string]*domain.Assessment)}
}

func (r *stubAssessmentRepo) Create(_ context.Context, a *domain.Assessment) (*domain.Assessment, error) {
	r.nextID++
	created := *a
	created.ID = "asm_" + strconv.Itoa(r.nextID)
	r.assessments[created.ID] = &created
	out := created
	return &out, nil
}

func (r *stubAssessmentRepo) FindByID(_ context.Context, orgID, id string) (*domain.Assessment, error) {
	a, ok := r.assessments[id]
	if !ok || a.OrganizationID != orgID {
		return nil, domain.ErrAssessmentNotFound
	}
	out := *a
	out.Questions = append([]domain.Question(nil), a.Questions...)
	return &out, nil
}

func (r *stubAssessmentRepo) ListByOrganization(_ context.Context, orgID string) ([]*domain.Assessment, error) {
	var out []*domain.Assessment
	for _, a := range r.assessments {
		if a.OrganizationID == orgID {
			copy := *a
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *stubAssessmentRepo) Update(_ context.Context, a *domain.Assessment) error {
	if _, ok := r.assessments[a.ID]; !ok {
		return domain.ErrAssessmentNotFound
	}
	updated := *a
	updated.Questions = append([]domain.Question(nil), a.Questions...)
	r.assessments[a.ID] = &updated
	return nil
}

func (r *stubAssessmentRepo) CountByOrganization(_ context.Context, orgID string) (int64, error) {
	var n int64
	for _, a := range r.assessments {
		if a.OrganizationID == orgID {
			n++
		}
	}
	return n, nil
}

// --- invitations ---

type stubInvitationRepo struct {
	invitations map[string]*domain.Invitation
	nextID      int
}

func newStubInvitationRepo() *stubInvitationRepo {
	return &stubInvitationRepo{invitations: make(map[string]*domain.Invitation)}
}

func (r *stubInvitationRepo) Create(_ context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	r.nextID++
	created := *inv
	created.ID = "inv_" + strconv.Itoa(r.nextID)
	r.invitations[created.ID] = &created
	out := created
	return &out, nil
}

func (r *stubInvitationRepo) FindByToken(_ context.Context, token string) (*domain.Invitation, error) {
	for _, inv := range r.invitations {
		if inv.Token == token {
			out := *inv
			return &out, nil
		}
	}
	return nil, domain.ErrInvitationNotFound
}

func (r *stubInvitationRepo) FindByID(_ context.Context, orgID, id string) (*domain.Invitation, error) {
	inv, ok := r.invitations[id]
	if !ok || inv.OrganizationID != orgID {
		return nil, domain.ErrInvitationNotFound
	}
	out := *inv
	return &out, nil
}

func (r *stubInvitationRepo) Update(_ context.Context, inv *domain.Invitation) error {
	if _, ok := r.invitations[inv.ID]; !ok {
		return domain.ErrInvitationNotFound
	}
	updated := *inv
	r.invitations[inv.ID] = &updated
	return nil
}

func (r *stubInvitationRepo) CountByOrganization(_ context.Context, orgID string) (int64, error) {
	var n int64
	for _, inv := range r.invitations {
		if inv.OrganizationID == orgID {
			n++
		}
	}
	return n, nil
}

// --- submissions ---

type stubSubmissionRepo struct {
	submissions map[string]*domain.Submission
	nextID      int
}

func newStubSubmissionRepo() *stubSubmissionRepo {
	return &stubSubmissionRepo{submissions: make(map[string]*domain.Submission)}
}

func (r *stubSubmissionRepo) Create(_ context.Context, sub *domain.Submission) (*domain.Submission, error) {
	r.nextID++
	created := *sub
	created.ID = "subm_" + strconv.Itoa(r.nextID)
	r.submissions[created.ID] = &created
	out := created
	return &out, nil
}

func (r *stubSubmissionRepo) FindByInvitationID(_ context.Context, invitationID string) (*domain.Submission, error) {
	for _, s := range r.submissions {
		if s.InvitationID == invitationID {
			out := *s
			return &out, nil
		}
	}
	return nil, domain.ErrInvitationNotFound
}

// --- subscriptions ---

type stubSubscriptionRepo struct {
	byOrg map[string]*domain.Subscription
}

func newStubSubscriptionRepo() *stubSubscriptionRepo {
	return &stubSubscriptionRepo{byOrg: make(map[string]*domain.Subscription)}
}

func (r *stubSubscriptionRepo) FindByOrganization(_ context.Context, orgID string) (*domain.Subscription, error) {
	sub, ok := r.byOrg[orgID]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	out := *sub
	return &out, nil
}

func (r *stubSubscriptionRepo) FindByStripeSubscriptionID(_ context.Context, subID string) (*domain.Subscription, error) {
	for _, sub := range r.byOrg {
		if sub.StripeSubscriptionID == subID {
			out := *sub
			return &out, nil
		}
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (r *stubSubscriptionRepo) Upsert(_ context.Context, sub *domain.Subscription) error {
	stored := *sub
	r.byOrg[sub.OrganizationID] = &stored
	return nil
}

// --- payment provider ---

// fakeProvider records calls and hands back a canned event from
// ParseWebhookEvent, standing in for signature verification.
type fakeProvider struct {
	checkoutCalls []ports.CheckoutInput
	checkoutURL   string
	checkoutErr   error

	cancelCalls []string
	cancelErr   error

	event    *ports.BillingEvent
	parseErr error
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, in ports.CheckoutInput) (string, error) {
	p.checkoutCalls = append(p.checkoutCalls, in)
	if p.checkoutErr != nil {
		return "", p.checkoutErr
	}
	if p.checkoutURL == "" {
		return "https://checkout.example.com/session", nil
	}
	return p.checkoutURL, nil
}

func (p *fakeProvider) CancelSubscription(_ context.Context, subscriptionID string) error {
	p.cancelCalls = append(p.cancelCalls, subscriptionID)
	return p.cancelErr
}

func (p *fakeProvider) ParseWebhookEvent(_ []byte, _ string) (*ports.BillingEvent, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.event, nil
}

// --- email ---

type stubEmailSender struct {
	invitations    []string
	welcomes       []string
	paymentFailed  []string
	failEverything bool
}

func (s *stubEmailSender) SendInvitation(_ context.Context, to, _, _, _ string) error {
	if s.failEverything {
		return fmt.Errorf("smtp down")
	}
	s.invitations = append(s.invitations, to)
	return nil
}

func (s *stubEmailSender) SendWelcome(_ context.Context, to, _ string) error {
	if s.failEverything {
		return fmt.Errorf("smtp down")
	}
	s.welcomes = append(s.welcomes, to)
	return nil
}

func (s *stubEmailSender) SendPaymentFailed(_ context.Context, to string, _ domain.Plan) error {
	if s.failEverything {
		return fmt.Errorf("smtp down")
	}
	s.paymentFailed = append(s.paymentFailed, to)
	return nil
}

// --- webhook dedup ---

type stubDedup struct {
	seen    map[string]bool
	seenErr error
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (d *stubDedup) Seen(_ context.Context, eventID string) (bool, error) {
	if d.seenErr != nil {
		return false, d.seenErr
	}
	return d.seen[eventID], nil
}

func (d *stubDedup) Mark(_ context.Context, eventID string) error {
	d.seen[eventID] = true
	return nil
}

// --- entitlements ---

// fixedEntitlements returns the same limits for every organization.
type fixedEntitlements struct {
	limits domain.Entitlements
}

func (f fixedEntitlements) Entitlements(_ context.Context, _ string) domain.Entitlements {
	return f.limits
}
