// Package payment implements the PaymentProvider port against Stripe.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

const metadataOrgID = "organization_id"
const metadataPlanID = "plan_id"

// StripeProvider talks to the Stripe API. Plan identity travels in session
// and subscription metadata so webhook events can be mapped back to the
// catalog without a price-id lookup table.
type StripeProvider struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

// Config holds the Stripe credentials and redirect targets.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// NewStripeProvider configures the global Stripe key and returns the provider.
func NewStripeProvider(cfg Config) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateCheckoutSession opens a hosted subscription checkout for a self-serve
// plan and returns the redirect URL.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in ports.CheckoutInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(p.successURL),
		CancelURL:  stripe.String(p.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(in.Plan.PriceCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(in.Plan.Interval),
					},
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.Plan.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				metadataOrgID:  in.OrganizationID,
				metadataPlanID: string(in.Plan.ID),
			},
		},
		Metadata: map[string]string{
			metadataOrgID:  in.OrganizationID,
			metadataPlanID: string(in.Plan.ID),
		},
	}
	params.Context = ctx

	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	} else if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CancelSubscription cancels the provider subscription at period end.
func (p *StripeProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	if _, err := subscription.Update(subscriptionID, params); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}

// ParseWebhookEvent verifies the Stripe-Signature header against the raw
// payload and maps the event into the reconciler's view. Event types the
// reconciler does not consume return (nil, nil).
func (p *StripeProvider) ParseWebhookEvent(payload []byte, signature string) (*ports.BillingEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature: %w", err)
	}

	switch ports.BillingEventType(event.Type) {
	case ports.EventCheckoutCompleted:
		return mapCheckoutSession(event)
	case ports.EventSubscriptionUpdated, ports.EventSubscriptionDeleted:
		return mapSubscription(event)
	case ports.EventInvoicePaid, ports.EventInvoiceFailed:
		return mapInvoice(event)
	default:
		return nil, nil
	}
}

func mapCheckoutSession(event stripe.Event) (*ports.BillingEvent, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	out := &ports.BillingEvent{
		ID:             event.ID,
		Type:           ports.BillingEventType(event.Type),
		OrganizationID: sess.Metadata[metadataOrgID],
		PlanID:         domain.PlanID(sess.Metadata[metadataPlanID]),
		Status:         domain.SubscriptionActive,
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out, nil
}

func mapSubscription(event stripe.Event) (*ports.BillingEvent, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}

	out := &ports.BillingEvent{
		ID:                 event.ID,
		Type:               ports.BillingEventType(event.Type),
		OrganizationID:     sub.Metadata[metadataOrgID],
		SubscriptionID:     sub.ID,
		PlanID:             domain.PlanID(sub.Metadata[metadataPlanID]),
		Status:             mapStatus(sub.Status),
		CurrentPeriodStart: unix(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unix(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.TrialEnd > 0 {
		t := unix(sub.TrialEnd)
		out.TrialEnd = &t
	}
	return out, nil
}

func mapInvoice(event stripe.Event) (*ports.BillingEvent, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}

	out := &ports.BillingEvent{
		ID:   event.ID,
		Type: ports.BillingEventType(event.Type),
	}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	if inv.Subscription != nil {
		out.SubscriptionID = inv.Subscription.ID
	}
	if inv.Lines != nil && len(inv.Lines.Data) > 0 {
		out.CurrentPeriodEnd = unix(inv.Lines.Data[0].Period.End)
	}
	return out, nil
}

// mapStatus narrows Stripe's status vocabulary to the local one. States the
// local model does not track (incomplete, unpaid, paused) degrade to pending.
func mapStatus(s stripe.SubscriptionStatus) domain.SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusActive:
		return domain.SubscriptionActive
	case stripe.SubscriptionStatusTrialing:
		return domain.SubscriptionTrialing
	case stripe.SubscriptionStatusPastDue:
		return domain.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled:
		return domain.SubscriptionCanceled
	default:
		return domain.SubscriptionPending
	}
}

func unix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
