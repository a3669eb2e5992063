// Package email implements the EmailSender port. The real sender delivers
// through Resend; a disabled sender that only logs is used when no API key is
// configured, so the product keeps working without outbound email.
package email

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/assessly/assessment-api/internal/core/domain"
)

// ResendSender delivers transactional email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	log    zerolog.Logger
}

func NewResendSender(apiKey, from string, log zerolog.Logger) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, log: log}
}

func (s *ResendSender) SendInvitation(ctx context.Context, to, candidateName, assessmentTitle, inviteURL string) error {
	return s.send(ctx, to, "Invitation: "+assessmentTitle, invitationBody(candidateName, assessmentTitle, inviteURL))
}

func (s *ResendSender) SendWelcome(ctx context.Context, to, name string) error {
	return s.send(ctx, to, "Welcome to Assessly", welcomeBody(name))
}

func (s *ResendSender) SendPaymentFailed(ctx context.Context, to string, plan domain.Plan) error {
	return s.send(ctx, to, "Payment failed", paymentFailedBody(plan))
}

// The bodies interpolate organization-supplied text (names, titles), so every
// value is HTML-escaped before it reaches the markup.

func invitationBody(candidateName, assessmentTitle, inviteURL string) string {
	name := candidateName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(
		`<p>Hi %s,</p><p>You have been invited to take the assessment <strong>%s</strong>.</p><p><a href="%s">Start the assessment</a></p>`,
		html.EscapeString(name), html.EscapeString(assessmentTitle), html.EscapeString(inviteURL),
	)
}

func welcomeBody(name string) string {
	return fmt.Sprintf("<p>Welcome aboard, %s!</p><p>Your workspace is ready.</p>", html.EscapeString(name))
}

func paymentFailedBody(plan domain.Plan) string {
	return fmt.Sprintf(
		"<p>The latest payment for your <strong>%s</strong> plan failed.</p><p>Please update your payment method to keep your current limits.</p>",
		html.EscapeString(plan.Name),
	)
}

func (s *ResendSender) send(ctx context.Context, to, subject, html string) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	s.log.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// DisabledSender is the no-op fallback used when email is not configured.
type DisabledSender struct {
	log zerolog.Logger
}

func NewDisabledSender(log zerolog.Logger) *DisabledSender {
	return &DisabledSender{log: log}
}

func (s *DisabledSender) SendInvitation(_ context.Context, to, _, assessmentTitle, _ string) error {
	s.log.Info().Str("to", to).Str("assessment", assessmentTitle).Msg("email disabled, invitation not sent")
	return nil
}

func (s *DisabledSender) SendWelcome(_ context.Context, to, _ string) error {
	s.log.Info().Str("to", to).Msg("email disabled, welcome not sent")
	return nil
}

func (s *DisabledSender) SendPaymentFailed(_ context.Context, to string, _ domain.Plan) error {
	s.log.Info().Str("to", to).Msg("email disabled, payment notice not sent")
	return nil
}
