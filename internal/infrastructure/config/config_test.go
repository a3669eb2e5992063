package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		AccessTokenSecret:   "a",
		RefreshTokenSecret:  "r",
		StripeSecretKey:     "sk_test_x",
		StripeWebhookSecret: "whsec_x",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateMissingSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.AccessTokenSecret = ""
	cfg.StripeWebhookSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "ACCESS_TOKEN_SECRET") || !strings.Contains(msg, "STRIPE_WEBHOOK_SECRET") {
		t.Fatalf("error should name every missing variable: %q", msg)
	}
	if strings.Contains(msg, "REFRESH_TOKEN_SECRET") {
		t.Fatalf("error should not name variables that are set: %q", msg)
	}
}

func TestValidateErrorIsDeterministic(t *testing.T) {
	first := (&Config{}).Validate()
	for i := 0; i < 5; i++ {
		if got := (&Config{}).Validate(); got.Error() != first.Error() {
			t.Fatalf("validation message changed between runs: %q vs %q", first, got)
		}
	}
}

func TestEmailEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.EmailEnabled() {
		t.Fatalf("email should be disabled without an api key")
	}
	cfg.ResendAPIKey = "re_123"
	if !cfg.EmailEnabled() {
		t.Fatalf("email should be enabled with an api key")
	}
}
