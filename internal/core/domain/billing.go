package domain

import (
	"errors"
	"time"
)

// PlanID identifies one entry of the static plan catalog.
type PlanID string

const (
	PlanFree         PlanID = "free"
	PlanBasic        PlanID = "basic"
	PlanProfessional PlanID = "professional"
	PlanEnterprise   PlanID = "enterprise"
)

// SubscriptionStatus represents the billing state of an organization.
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")
var ErrUnknownPlan = errors.New("unknown plan")

// Entitlements are the per-plan resource caps.
type Entitlements struct {
	MaxAssessments            int `json:"max_assessments"`
	MaxCandidates             int `json:"max_candidates"`
	MaxQuestionsPerAssessment int `json:"max_questions_per_assessment"`
}

// Plan is one entry of the catalog. SelfServe plans route through the payment
// provider's checkout; free is applied locally and enterprise goes through
// sales, so neither ever reaches the provider.
type Plan struct {
	ID           PlanID       `json:"id"`
	Name         string       `json:"name"`
	PriceCents   int64        `json:"price_cents"`
	Interval     string       `json:"interval"`
	Entitlements Entitlements `json:"entitlements"`
	SelfServe    bool         `json:"-"`
}

// planCatalog is the static plan table. Read-only after startup.
var planCatalog = []Plan{
	{
		ID:         PlanFree,
		Name:       "Free",
		PriceCents: 0,
		Interval:   "month",
		Entitlements: Entitlements{
			MaxAssessments:            2,
			MaxCandidates:             10,
			MaxQuestionsPerAssessment: 10,
		},
	},
	{
		ID:         PlanBasic,
		Name:       "Basic",
		PriceCents: 2900,
		Interval:   "month",
		Entitlements: Entitlements{
			MaxAssessments:            10,
			MaxCandidates:             100,
			MaxQuestionsPerAssessment: 30,
		},
		SelfServe: true,
	},
	{
		ID:         PlanProfessional,
		Name:       "Professional",
		PriceCents: 9900,
		Interval:   "month",
		Entitlements: Entitlements{
			MaxAssessments:            50,
			MaxCandidates:             1000,
			MaxQuestionsPerAssessment: 100,
		},
		SelfServe: true,
	},
	{
		ID:         PlanEnterprise,
		Name:       "Enterprise",
		PriceCents: 0, // custom pricing, negotiated through sales
		Interval:   "month",
		Entitlements: Entitlements{
			MaxAssessments:            1000,
			MaxCandidates:             100000,
			MaxQuestionsPerAssessment: 500,
		},
	},
}

// Plans returns the catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(planCatalog))
	copy(out, planCatalog)
	return out
}

// PlanByID looks up a catalog entry.
func PlanByID(id PlanID) (Plan, bool) {
	for _, p := range planCatalog {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// FreeEntitlements is the fallback entitlement set used when billing state
// cannot be determined.
func FreeEntitlements() Entitlements {
	p, _ := PlanByID(PlanFree)
	return p.Entitlements
}

// Subscription is the local, authoritative record of an organization's plan.
// It is mutated only by the billing reconciler in response to verified
// provider events, or locally for plans that never touch the provider.
type Subscription struct {
	ID                   string             `json:"id" bson:"_id,omitempty"`
	OrganizationID       string             `json:"organization_id" bson:"organization_id"`
	PlanID               PlanID             `json:"plan_id" bson:"plan_id"`
	Status               SubscriptionStatus `json:"status" bson:"status"`
	StripeCustomerID     string             `json:"-" bson:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string             `json:"-" bson:"stripe_subscription_id,omitempty"`
	CurrentPeriodStart   time.Time          `json:"current_period_start,omitempty" bson:"current_period_start,omitempty"`
	CurrentPeriodEnd     time.Time          `json:"current_period_end,omitempty" bson:"current_period_end,omitempty"`
	TrialEnd             *time.Time         `json:"trial_end,omitempty" bson:"trial_end,omitempty"`
	CancelAtPeriodEnd    bool               `json:"cancel_at_period_end" bson:"cancel_at_period_end"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" bson:"updated_at"`
}

// SameBillingState reports whether applying other would change nothing.
// Timestamps of record-keeping (CreatedAt/UpdatedAt) are ignored; this is the
// value-equality check that makes webhook redelivery a no-op.
func (s *Subscription) SameBillingState(other *Subscription) bool {
	if s == nil || other == nil {
		return false
	}
	sameTrial := (s.TrialEnd == nil) == (other.TrialEnd == nil) &&
		(s.TrialEnd == nil || s.TrialEnd.Equal(*other.TrialEnd))
	return s.PlanID == other.PlanID &&
		s.Status == other.Status &&
		s.StripeCustomerID == other.StripeCustomerID &&
		s.StripeSubscriptionID == other.StripeSubscriptionID &&
		s.CurrentPeriodStart.Equal(other.CurrentPeriodStart) &&
		s.CurrentPeriodEnd.Equal(other.CurrentPeriodEnd) &&
		s.CancelAtPeriodEnd == other.CancelAtPeriodEnd &&
		sameTrial
}
