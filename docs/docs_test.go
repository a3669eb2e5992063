package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocumentCoversRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}

	var doc struct {
		Paths       map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage `json:"definitions"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal doc: %v", err)
	}

	routes := []string{
		"/auth/register",
		"/auth/login",
		"/auth/refresh",
		"/v1/me",
		"/v1/assessments",
		"/v1/assessments/{id}",
		"/v1/assessments/{id}/questions",
		"/v1/assessments/{id}/questions/{question_id}",
		"/v1/assessments/{id}/publish",
		"/v1/assessments/{id}/archive",
		"/v1/invitations",
		"/v1/invitations/{id}",
		"/v1/invitations/{id}/result",
		"/v1/invitations/{token}/start",
		"/v1/invitations/{token}/submit",
		"/v1/billing/plans",
		"/v1/billing/subscription",
		"/v1/billing/checkout",
		"/v1/billing/cancel",
		"/webhooks/stripe",
	}
	for _, route := range routes {
		if _, ok := doc.Paths[route]; !ok {
			t.Errorf("document is missing path %s", route)
		}
	}

	for _, def := range []string{"domain.Assessment", "domain.Submission", "handler.authResponse", "ports.CheckoutResult"} {
		if _, ok := doc.Definitions[def]; !ok {
			t.Errorf("document is missing definition %s", def)
		}
	}
}
