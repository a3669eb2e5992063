package ports

import (
	"context"
	"time"

	"github.com/assessly/assessment-api/internal/core/domain"
)

// BillingEventType is the provider event type, in the provider's own naming.
type BillingEventType string

const (
	EventCheckoutCompleted   BillingEventType = "checkout.session.completed"
	EventSubscriptionUpdated BillingEventType = "customer.subscription.updated"
	EventSubscriptionDeleted BillingEventType = "customer.subscription.deleted"
	EventInvoicePaid         BillingEventType = "invoice.payment_succeeded"
	EventInvoiceFailed       BillingEventType = "invoice.payment_failed"
)

// BillingEvent is the narrow, provider-independent view of a verified webhook
// event. Fields that a given event type does not carry are left zero.
type BillingEvent struct {
	ID                 string
	Type               BillingEventType
	OrganizationID     string
	CustomerID         string
	SubscriptionID     string
	PlanID             domain.PlanID
	Status             domain.SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialEnd           *time.Time
	CancelAtPeriodEnd  bool
}

// CheckoutInput carries everything the provider needs to open a hosted
// checkout session for a self-serve plan. Redirect URLs are provider
// configuration, not per-call input.
type CheckoutInput struct {
	OrganizationID string
	CustomerID     string
	CustomerEmail  string
	Plan           domain.Plan
}

// CheckoutResult is the outcome of a plan selection. Exactly one of URL or
// ContactSales is meaningful; free-plan selections set neither.
type CheckoutResult struct {
	PlanID       domain.PlanID `json:"plan_id"`
	URL          string        `json:"url,omitempty"`
	ContactSales bool          `json:"contact_sales,omitempty"`
}

type BillingService interface {
	Plans(ctx context.Context) []domain.Plan
	Subscription(ctx context.Context, orgID string) (*domain.Subscription, error)
	Entitlements(ctx context.Context, orgID string) domain.Entitlements
	SelectPlan(ctx context.Context, orgID, userEmail string, plan domain.PlanID) (*CheckoutResult, error)
	Cancel(ctx context.Context, orgID string) error
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// SubscriptionRepository defines subscription persistence. Upsert is keyed by
// organization id: at most one subscription record exists per organization.
type SubscriptionRepository interface {
	FindByOrganization(ctx context.Context, orgID string) (*domain.Subscription, error)
	FindByStripeSubscriptionID(ctx context.Context, subID string) (*domain.Subscription, error)
	Upsert(ctx context.Context, sub *domain.Subscription) error
}

// PaymentProvider wraps the external payment processor behind a narrow
// contract. The real implementation talks to Stripe; tests use a fake.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (url string, err error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	// ParseWebhookEvent verifies the payload signature and returns the typed
	// event. A nil event with a nil error means the event type is not one the
	// reconciler consumes.
	ParseWebhookEvent(payload []byte, signature string) (*BillingEvent, error)
}

// EmailSender wraps the transactional email provider. Implementations never
// block business flows: callers log failures and move on.
type EmailSender interface {
	SendInvitation(ctx context.Context, to, candidateName, assessmentTitle, inviteURL string) error
	SendWelcome(ctx context.Context, to, name string) error
	SendPaymentFailed(ctx context.Context, to string, plan domain.Plan) error
}

// WebhookDedup is a best-effort processed-event ledger. A Seen hit means the
// event id was already handled recently and can be skipped.
type WebhookDedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}
