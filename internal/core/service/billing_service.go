package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

// BillingService owns the local subscription state. It translates verified
// provider webhook events into subscription updates and exposes plan
// selection to the rest of the system.
type BillingService struct {
	subs     ports.SubscriptionRepository
	orgs     ports.OrganizationRepository
	users    ports.UserRepository
	provider ports.PaymentProvider
	email    ports.EmailSender
	dedup    ports.WebhookDedup
	log      zerolog.Logger
}

func NewBillingService(
	subs ports.SubscriptionRepository,
	orgs ports.OrganizationRepository,
	users ports.UserRepository,
	provider ports.PaymentProvider,
	email ports.EmailSender,
	dedup ports.WebhookDedup,
	log zerolog.Logger,
) *BillingService {
	return &BillingService{
		subs:     subs,
		orgs:     orgs,
		users:    users,
		provider: provider,
		email:    email,
		dedup:    dedup,
		log:      log,
	}
}

// Plans returns the static catalog.
func (s *BillingService) Plans(_ context.Context) []domain.Plan {
	return domain.Plans()
}

// Subscription returns the organization's subscription record. Organizations
// with no record are on the free plan.
func (s *BillingService) Subscription(ctx context.Context, orgID string) (*domain.Subscription, error) {
	sub, err := s.subs.FindByOrganization(ctx, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrSubscriptionNotFound) {
			return &domain.Subscription{
				OrganizationID: orgID,
				PlanID:         domain.PlanFree,
				Status:         domain.SubscriptionActive,
			}, nil
		}
		return nil, err
	}
	return sub, nil
}

// Entitlements resolves the effective limits for an organization. Billing
// failures degrade to the free plan's limits so the rest of the product keeps
// working when billing is down or misconfigured.
func (s *BillingService) Entitlements(ctx context.Context, orgID string) domain.Entitlements {
	sub, err := s.Subscription(ctx, orgID)
	if err != nil {
		s.log.Warn().Err(err).Str("org_id", orgID).Msg("entitlement lookup degraded to free plan")
		return domain.FreeEntitlements()
	}

	if sub.Status != domain.SubscriptionActive && sub.Status != domain.SubscriptionTrialing {
		return domain.FreeEntitlements()
	}

	plan, ok := domain.PlanByID(sub.PlanID)
	if !ok {
		return domain.FreeEntitlements()
	}
	return plan.Entitlements
}

// SelectPlan routes a plan change. Free is applied locally, enterprise
// returns a contact-sales result, and self-serve plans open a provider
// checkout session. Neither free nor enterprise ever reaches the provider.
func (s *BillingService) SelectPlan(ctx context.Context, orgID, userEmail string, planID domain.PlanID) (*ports.CheckoutResult, error) {
	plan, ok := domain.PlanByID(planID)
	if !ok {
		return nil, domain.ErrUnknownPlan
	}

	switch {
	case plan.ID == domain.PlanFree:
		if err := s.applyLocalPlan(ctx, orgID, domain.PlanFree); err != nil {
			return nil, err
		}
		return &ports.CheckoutResult{PlanID: plan.ID}, nil

	case plan.ID == domain.PlanEnterprise:
		s.log.Info().Str("org_id", orgID).Msg("enterprise plan requested, routing to sales")
		return &ports.CheckoutResult{PlanID: plan.ID, ContactSales: true}, nil
	}

	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	url, err := s.provider.CreateCheckoutSession(ctx, ports.CheckoutInput{
		OrganizationID: orgID,
		CustomerID:     org.StripeCustomerID,
		CustomerEmail:  userEmail,
		Plan:           plan,
	})
	if err != nil {
		s.log.Error().Err(err).Str("org_id", orgID).Str("plan", string(plan.ID)).Msg("checkout session failed")
		return nil, err
	}

	return &ports.CheckoutResult{PlanID: plan.ID, URL: url}, nil
}

// Cancel asks the provider to cancel the active subscription and records the
// pending cancellation locally. The provider call is best effort: the final
// canceled state arrives via the subscription.deleted webhook.
func (s *BillingService) Cancel(ctx context.Context, orgID string) error {
	sub, err := s.subs.FindByOrganization(ctx, orgID)
	if err != nil {
		return err
	}

	if sub.StripeSubscriptionID != "" {
		if err := s.provider.CancelSubscription(ctx, sub.StripeSubscriptionID); err != nil {
			s.log.Error().Err(err).Str("org_id", orgID).Msg("provider cancel failed")
			return err
		}
	}

	sub.CancelAtPeriodEnd = true
	sub.UpdatedAt = time.Now().UTC()
	return s.subs.Upsert(ctx, sub)
}

// HandleWebhook verifies and reconciles a raw provider webhook delivery.
// Unknown event types are ignored. Redelivered events are skipped via the
// best-effort dedup ledger and, failing that, by value-equal updates being
// no-ops.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhookEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("verify webhook: %w", err)
	}
	if event == nil {
		s.log.Debug().Msg("unhandled webhook event type ignored")
		return nil
	}

	if event.ID != "" {
		seen, err := s.dedup.Seen(ctx, event.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("dedup check failed, processing anyway")
		} else if seen {
			s.log.Debug().Str("event_id", event.ID).Msg("duplicate webhook skipped")
			return nil
		}
	}

	if err := s.reconcile(ctx, event); err != nil {
		return err
	}

	if event.ID != "" {
		if err := s.dedup.Mark(ctx, event.ID); err != nil {
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to record processed event")
		}
	}

	s.log.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Msg("webhook reconciled")
	return nil
}

func (s *BillingService) reconcile(ctx context.Context, event *ports.BillingEvent) error {
	switch event.Type {
	case ports.EventCheckoutCompleted:
		return s.onCheckoutCompleted(ctx, event)
	case ports.EventSubscriptionUpdated:
		return s.onSubscriptionUpdated(ctx, event)
	case ports.EventSubscriptionDeleted:
		return s.onSubscriptionDeleted(ctx, event)
	case ports.EventInvoicePaid:
		return s.onInvoicePaid(ctx, event)
	case ports.EventInvoiceFailed:
		return s.onInvoiceFailed(ctx, event)
	default:
		s.log.Warn().Str("type", string(event.Type)).Msg("unknown webhook event type ignored")
		return nil
	}
}

// onCheckoutCompleted activates the purchased plan and pins the provider ids
// on the local record.
func (s *BillingService) onCheckoutCompleted(ctx context.Context, event *ports.BillingEvent) error {
	if event.OrganizationID == "" {
		return errors.New("checkout event missing organization reference")
	}

	desired := s.existingOrNew(ctx, event.OrganizationID)
	desired.PlanID = event.PlanID
	desired.Status = domain.SubscriptionActive
	desired.StripeCustomerID = event.CustomerID
	desired.StripeSubscriptionID = event.SubscriptionID
	desired.CancelAtPeriodEnd = false

	if event.CustomerID != "" {
		if err := s.orgs.SetStripeCustomerID(ctx, event.OrganizationID, event.CustomerID); err != nil {
			s.log.Warn().Err(err).Str("org_id", event.OrganizationID).Msg("failed to pin customer id")
		}
	}

	return s.applyIfChanged(ctx, desired)
}

func (s *BillingService) onSubscriptionUpdated(ctx context.Context, event *ports.BillingEvent) error {
	sub, err := s.findTarget(ctx, event)
	if err != nil {
		return err
	}

	desired := *sub
	if event.PlanID != "" {
		desired.PlanID = event.PlanID
	}
	if event.Status != "" {
		desired.Status = event.Status
	}
	desired.CurrentPeriodStart = event.CurrentPeriodStart
	desired.CurrentPeriodEnd = event.CurrentPeriodEnd
	desired.TrialEnd = event.TrialEnd
	desired.CancelAtPeriodEnd = event.CancelAtPeriodEnd

	return s.applyIfChanged(ctx, &desired)
}

// onSubscriptionDeleted drops the organization back to the free plan.
func (s *BillingService) onSubscriptionDeleted(ctx context.Context, event *ports.BillingEvent) error {
	sub, err := s.findTarget(ctx, event)
	if err != nil {
		return err
	}

	desired := *sub
	desired.PlanID = domain.PlanFree
	desired.Status = domain.SubscriptionCanceled
	desired.StripeSubscriptionID = ""
	desired.CancelAtPeriodEnd = false

	return s.applyIfChanged(ctx, &desired)
}

func (s *BillingService) onInvoicePaid(ctx context.Context, event *ports.BillingEvent) error {
	sub, err := s.findTarget(ctx, event)
	if err != nil {
		return err
	}

	desired := *sub
	desired.Status = domain.SubscriptionActive
	if !event.CurrentPeriodEnd.IsZero() {
		desired.CurrentPeriodEnd = event.CurrentPeriodEnd
	}

	return s.applyIfChanged(ctx, &desired)
}

func (s *BillingService) onInvoiceFailed(ctx context.Context, event *ports.BillingEvent) error {
	sub, err := s.findTarget(ctx, event)
	if err != nil {
		return err
	}

	desired := *sub
	desired.Status = domain.SubscriptionPastDue
	if err := s.applyIfChanged(ctx, &desired); err != nil {
		return err
	}

	s.notifyPaymentFailed(ctx, sub)
	return nil
}

// findTarget locates the local subscription a provider event refers to,
// preferring the provider subscription id and falling back to the
// organization reference carried in event metadata.
func (s *BillingService) findTarget(ctx context.Context, event *ports.BillingEvent) (*domain.Subscription, error) {
	if event.SubscriptionID != "" {
		sub, err := s.subs.FindByStripeSubscriptionID(ctx, event.SubscriptionID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, domain.ErrSubscriptionNotFound) {
			return nil, err
		}
	}
	if event.OrganizationID != "" {
		return s.subs.FindByOrganization(ctx, event.OrganizationID)
	}
	return nil, domain.ErrSubscriptionNotFound
}

// applyIfChanged writes desired only when it differs from the stored state,
// making event redelivery a no-op.
func (s *BillingService) applyIfChanged(ctx context.Context, desired *domain.Subscription) error {
	current, err := s.subs.FindByOrganization(ctx, desired.OrganizationID)
	if err == nil && current.SameBillingState(desired) {
		s.log.Debug().Str("org_id", desired.OrganizationID).Msg("subscription already in target state")
		return nil
	}
	if err != nil && !errors.Is(err, domain.ErrSubscriptionNotFound) {
		return err
	}

	desired.UpdatedAt = time.Now().UTC()
	if desired.CreatedAt.IsZero() {
		desired.CreatedAt = desired.UpdatedAt
	}
	return s.subs.Upsert(ctx, desired)
}

func (s *BillingService) applyLocalPlan(ctx context.Context, orgID string, planID domain.PlanID) error {
	desired := s.existingOrNew(ctx, orgID)
	desired.PlanID = planID
	desired.Status = domain.SubscriptionActive
	desired.StripeSubscriptionID = ""
	desired.CurrentPeriodStart = time.Time{}
	desired.CurrentPeriodEnd = time.Time{}
	desired.TrialEnd = nil
	desired.CancelAtPeriodEnd = false
	return s.applyIfChanged(ctx, desired)
}

func (s *BillingService) existingOrNew(ctx context.Context, orgID string) *domain.Subscription {
	sub, err := s.subs.FindByOrganization(ctx, orgID)
	if err != nil {
		return &domain.Subscription{OrganizationID: orgID}
	}
	return sub
}

// notifyPaymentFailed emails the organization owner. Best effort only.
func (s *BillingService) notifyPaymentFailed(ctx context.Context, sub *domain.Subscription) {
	plan, _ := domain.PlanByID(sub.PlanID)

	org, err := s.orgs.FindByID(ctx, sub.OrganizationID)
	if err != nil {
		s.log.Warn().Err(err).Str("org_id", sub.OrganizationID).Msg("cannot resolve org for payment-failed notice")
		return
	}
	owner, err := s.users.FindByID(ctx, org.OwnerUserID)
	if err != nil {
		s.log.Warn().Err(err).Str("org_id", sub.OrganizationID).Msg("cannot resolve owner for payment-failed notice")
		return
	}

	if err := s.email.SendPaymentFailed(ctx, owner.Email, plan); err != nil {
		s.log.Warn().Err(err).Str("org_id", sub.OrganizationID).Msg("payment-failed email failed")
	}
}
