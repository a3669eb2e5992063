package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

type billingFixture struct {
	svc      *BillingService
	subs     *stubSubscriptionRepo
	orgs     *stubOrgRepo
	users    *stubUserRepo
	provider *fakeProvider
	email    *stubEmailSender
	dedup    *stubDedup
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		subs:     newStubSubscriptionRepo(),
		orgs:     newStubOrgRepo(),
		users:    newStubUserRepo(),
		provider: &fakeProvider{},
		email:    &stubEmailSender{},
		dedup:    newStubDedup(),
	}
	f.svc = NewBillingService(f.subs, f.orgs, f.users, f.provider, f.email, f.dedup, zerolog.Nop())
	return f
}

// seedOrg creates an organization with an owner user and returns the org id.
func (f *billingFixture) seedOrg(t *testing.T) string {
	t.Helper()
	org, err := f.orgs.Create(context.Background(), &domain.Organization{Name: "Acme"})
	if err != nil {
		t.Fatalf("seed org failed: %v", err)
	}
	owner, err := f.users.Create(context.Background(), &domain.User{
		Email: "owner@example.com", Role: domain.RoleOwner, OrganizationID: org.ID,
	})
	if err != nil {
		t.Fatalf("seed owner failed: %v", err)
	}
	if err := f.orgs.SetOwner(context.Background(), org.ID, owner.ID); err != nil {
		t.Fatalf("set owner failed: %v", err)
	}
	return org.ID
}

func TestBillingService_SubscriptionDefaultsToFree(t *testing.T) {
	f := newBillingFixture()

	sub, err := f.svc.Subscription(context.Background(), "org_without_record")
	if err != nil {
		t.Fatalf("Subscription returned error: %v", err)
	}
	if sub.PlanID != domain.PlanFree || sub.Status != domain.SubscriptionActive {
		t.Fatalf("missing record should read as active free plan, got %+v", sub)
	}
}

func TestBillingService_Entitlements(t *testing.T) {
	f := newBillingFixture()

	// No record: free limits.
	if got := f.svc.Entitlements(context.Background(), "org_1"); got != domain.FreeEntitlements() {
		t.Fatalf("expected free entitlements, got %+v", got)
	}

	// Active paid plan: plan limits.
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: "org_1", PlanID: domain.PlanProfessional, Status: domain.SubscriptionActive,
	})
	pro, _ := domain.PlanByID(domain.PlanProfessional)
	if got := f.svc.Entitlements(context.Background(), "org_1"); got != pro.Entitlements {
		t.Fatalf("expected professional entitlements, got %+v", got)
	}

	// Past due: degraded to free.
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: "org_1", PlanID: domain.PlanProfessional, Status: domain.SubscriptionPastDue,
	})
	if got := f.svc.Entitlements(context.Background(), "org_1"); got != domain.FreeEntitlements() {
		t.Fatalf("past due should degrade to free entitlements, got %+v", got)
	}

	// Trialing counts as entitled.
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: "org_1", PlanID: domain.PlanBasic, Status: domain.SubscriptionTrialing,
	})
	basic, _ := domain.PlanByID(domain.PlanBasic)
	if got := f.svc.Entitlements(context.Background(), "org_1"); got != basic.Entitlements {
		t.Fatalf("trialing should keep plan entitlements, got %+v", got)
	}
}

func TestBillingService_SelectPlan_Free(t *testing.T) {
	f := newBillingFixture()
	orgID := f.seedOrg(t)

	res, err := f.svc.SelectPlan(context.Background(), orgID, "owner@example.com", domain.PlanFree)
	if err != nil {
		t.Fatalf("SelectPlan returned error: %v", err)
	}
	if res.URL != "" || res.ContactSales {
		t.Fatalf("free selection needs no checkout, got %+v", res)
	}
	if len(f.provider.checkoutCalls) != 0 {
		t.Fatalf("free plan must never reach the payment provider")
	}

	sub, _ := f.svc.Subscription(context.Background(), orgID)
	if sub.PlanID != domain.PlanFree || sub.Status != domain.SubscriptionActive {
		t.Fatalf("free plan should be applied locally, got %+v", sub)
	}
}

func TestBillingService_SelectPlan_Enterprise(t *testing.T) {
	f := newBillingFixture()
	orgID := f.seedOrg(t)

	res, err := f.svc.SelectPlan(context.Background(), orgID, "owner@example.com", domain.PlanEnterprise)
	if err != nil {
		t.Fatalf("SelectPlan returned error: %v", err)
	}
	if !res.ContactSales {
		t.Fatalf("enterprise selection should route to sales, got %+v", res)
	}
	if len(f.provider.checkoutCalls) != 0 {
		t.Fatalf("enterprise plan must never reach the payment provider")
	}
}

func TestBillingService_SelectPlan_SelfServe(t *testing.T) {
	f := newBillingFixture()
	orgID := f.seedOrg(t)
	f.provider.checkoutURL = "https://checkout.example.com/cs_123"

	res, err := f.svc.SelectPlan(context.Background(), orgID, "owner@example.com", domain.PlanBasic)
	if err != nil {
		t.Fatalf("SelectPlan returned error: %v", err)
	}
	if res.URL != "https://checkout.example.com/cs_123" {
		t.Fatalf("expected checkout url, got %+v", res)
	}
	if len(f.provider.checkoutCalls) != 1 {
		t.Fatalf("expected one checkout call, got %d", len(f.provider.checkoutCalls))
	}
	call := f.provider.checkoutCalls[0]
	if call.OrganizationID != orgID || call.Plan.ID != domain.PlanBasic {
		t.Fatalf("unexpected checkout input: %+v", call)
	}
	if call.CustomerEmail != "owner@example.com" {
		t.Fatalf("checkout should carry the requester's email, got %q", call.CustomerEmail)
	}
}

func TestBillingService_SelectPlan_Unknown(t *testing.T) {
	f := newBillingFixture()
	if _, err := f.svc.SelectPlan(context.Background(), "org_1", "a@b.c", "platinum"); err != domain.ErrUnknownPlan {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}

func TestBillingService_SelectPlan_ProviderFailure(t *testing.T) {
	f := newBillingFixture()
	orgID := f.seedOrg(t)
	f.provider.checkoutErr = errors.New("stripe 500")

	if _, err := f.svc.SelectPlan(context.Background(), orgID, "owner@example.com", domain.PlanBasic); err == nil {
		t.Fatalf("provider failure must surface")
	}
	if _, err := f.subs.FindByOrganization(context.Background(), orgID); !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("failed checkout must not write local state")
	}
}

func TestBillingService_Cancel(t *testing.T) {
	f := newBillingFixture()
	orgID := f.seedOrg(t)
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID:       orgID,
		PlanID:               domain.PlanBasic,
		Status:               domain.SubscriptionActive,
		StripeSubscriptionID: "sub_1",
	})

	if err := f.svc.Cancel(context.Background(), orgID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if len(f.provider.cancelCalls) != 1 || f.provider.cancelCalls[0] != "sub_1" {
		t.Fatalf("expected provider cancel for sub_1, got %v", f.provider.cancelCalls)
	}

	sub, _ := f.subs.FindByOrganization(context.Background(), orgID)
	if !sub.CancelAtPeriodEnd {
		t.Fatalf("cancellation should be recorded as pending")
	}
	if sub.Status != domain.SubscriptionActive {
		t.Fatalf("final canceled state arrives via webhook, status stays %s", domain.SubscriptionActive)
	}
}

func webhookEvent(t ports.BillingEventType) *ports.BillingEvent {
	return &ports.BillingEvent{
		ID:             "evt_1",
		Type:           t,
		OrganizationID: "org_1",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		PlanID:         domain.PlanBasic,
		Status:         domain.SubscriptionActive,
	}
}

func TestBillingService_Webhook_CheckoutCompleted(t *testing.T) {
	f := newBillingFixture()
	org, _ := f.orgs.Create(context.Background(), &domain.Organization{Name: "Acme"})
	ev := webhookEvent(ports.EventCheckoutCompleted)
	ev.OrganizationID = org.ID
	f.provider.event = ev

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	sub, err := f.subs.FindByOrganization(context.Background(), org.ID)
	if err != nil {
		t.Fatalf("subscription not created: %v", err)
	}
	if sub.PlanID != domain.PlanBasic || sub.Status != domain.SubscriptionActive {
		t.Fatalf("unexpected state: %+v", sub)
	}
	if sub.StripeSubscriptionID != "sub_1" || sub.StripeCustomerID != "cus_1" {
		t.Fatalf("provider ids not pinned: %+v", sub)
	}

	stored, _ := f.orgs.FindByID(context.Background(), org.ID)
	if stored.StripeCustomerID != "cus_1" {
		t.Fatalf("customer id should be pinned on the organization")
	}
}

func TestBillingService_Webhook_SubscriptionUpdated(t *testing.T) {
	f := newBillingFixture()
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: "org_1", PlanID: domain.PlanBasic,
		Status: domain.SubscriptionActive, StripeSubscriptionID: "sub_1",
	})

	ev := webhookEvent(ports.EventSubscriptionUpdated)
	ev.PlanID = domain.PlanProfessional
	ev.CurrentPeriodEnd = time.Now().AddDate(0, 1, 0)
	ev.CancelAtPeriodEnd = true
	f.provider.event = ev

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	sub, _ := f.subs.FindByOrganization(context.Background(), "org_1")
	if sub.PlanID != domain.PlanProfessional {
		t.Fatalf("plan not updated: %+v", sub)
	}
	if !sub.CancelAtPeriodEnd {
		t.Fatalf("cancel flag not carried over")
	}
}

func TestBillingService_Webhook_SubscriptionDeleted(t *testing.T) {
	f := newBillingFixture()
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: "org_1", PlanID: domain.PlanBasic,
		Status: domain.SubscriptionActive, StripeSubscriptionID: "sub_1",
	})
	f.provider.event = webhookEvent(ports.EventSubscriptionDeleted)

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	sub, _ := f.subs.FindByOrganization(context.Background(), "org_1")
	if sub.PlanID != domain.PlanFree || sub.Status != domain.SubscriptionCanceled {
		t.Fatalf("deletion should drop to canceled free plan, got %+v", sub)
	}
	if sub.StripeSubscriptionID != "" {
		t.Fatalf("provider subscription id should be cleared")
	}
}

func TestBillingService_Webhook_InvoicePaid(t *testing.T) {
	f := newBillingFixture()
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: "org_1", PlanID: domain.PlanBasic,
		Status: domain.SubscriptionPastDue, StripeSubscriptionID: "sub_1",
	})
	ev := webhookEvent(ports.EventInvoicePaid)
	ev.CurrentPeriodEnd = time.Now().AddDate(0, 1, 0)
	f.provider.event = ev

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	sub, _ := f.subs.FindByOrganization(context.Background(), "org_1")
	if sub.Status != domain.SubscriptionActive {
		t.Fatalf("paid invoice should reactivate, got %s", sub.Status)
	}
	if !sub.CurrentPeriodEnd.Equal(ev.CurrentPeriodEnd) {
		t.Fatalf("period end not extended")
	}
}

func TestBillingService_Webhook_InvoiceFailed(t *testing.T) {
	f := newBillingFixture()
	orgID := f.seedOrg(t)
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: orgID, PlanID: domain.PlanBasic,
		Status: domain.SubscriptionActive, StripeSubscriptionID: "sub_1",
	})
	ev := webhookEvent(ports.EventInvoiceFailed)
	ev.OrganizationID = orgID
	f.provider.event = ev

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}

	sub, _ := f.subs.FindByOrganization(context.Background(), orgID)
	if sub.Status != domain.SubscriptionPastDue {
		t.Fatalf("failed invoice should mark past due, got %s", sub.Status)
	}
	if len(f.email.paymentFailed) != 1 || f.email.paymentFailed[0] != "owner@example.com" {
		t.Fatalf("owner should be notified, got %v", f.email.paymentFailed)
	}
}

func TestBillingService_Webhook_InvalidSignature(t *testing.T) {
	f := newBillingFixture()
	f.provider.parseErr = errors.New("signature mismatch")

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "bad"); err == nil {
		t.Fatalf("rejected signature must surface as an error")
	}
	if len(f.subs.byOrg) != 0 {
		t.Fatalf("rejected delivery must not touch state")
	}
}

func TestBillingService_Webhook_UnconsumedTypeIgnored(t *testing.T) {
	f := newBillingFixture()
	f.provider.event = nil // parse returns nil,nil for types the reconciler ignores

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unconsumed event types must be acknowledged, got %v", err)
	}
}

func TestBillingService_Webhook_DuplicateSkipped(t *testing.T) {
	f := newBillingFixture()
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: "org_1", PlanID: domain.PlanBasic,
		Status: domain.SubscriptionActive, StripeSubscriptionID: "sub_1",
	})
	ev := webhookEvent(ports.EventSubscriptionUpdated)
	ev.Status = domain.SubscriptionPastDue
	f.provider.event = ev

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if !f.dedup.seen["evt_1"] {
		t.Fatalf("processed event should be recorded")
	}

	// Redelivery with the dedup entry present: skipped before reconcile.
	f.provider.event = webhookEvent(ports.EventSubscriptionDeleted)
	f.provider.event.ID = "evt_1"
	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	sub, _ := f.subs.FindByOrganization(context.Background(), "org_1")
	if sub.Status != domain.SubscriptionPastDue {
		t.Fatalf("duplicate event must not be reprocessed, got %s", sub.Status)
	}
}

func TestBillingService_Webhook_RedeliveryIsValueNoop(t *testing.T) {
	f := newBillingFixture()
	_ = f.subs.Upsert(context.Background(), &domain.Subscription{
		OrganizationID: "org_1", PlanID: domain.PlanBasic,
		Status: domain.SubscriptionActive, StripeSubscriptionID: "sub_1",
	})
	f.dedup.seenErr = errors.New("redis down")
	f.provider.event = webhookEvent(ports.EventSubscriptionUpdated)

	// Dedup being down does not block processing, and the value-equal update
	// is a no-op either way.
	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("delivery with dedup down failed: %v", err)
	}
	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}

	sub, _ := f.subs.FindByOrganization(context.Background(), "org_1")
	if sub.Status != domain.SubscriptionActive || sub.PlanID != domain.PlanBasic {
		t.Fatalf("state drifted on redelivery: %+v", sub)
	}
}

func TestBillingService_Webhook_UnknownTargetFails(t *testing.T) {
	f := newBillingFixture()
	ev := webhookEvent(ports.EventInvoicePaid)
	ev.OrganizationID = ""
	f.provider.event = ev

	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
}
