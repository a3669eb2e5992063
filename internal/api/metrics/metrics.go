// Package metrics defines and registers all custom Prometheus metrics for the
// Assessly API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at package
// init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "assessly"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// WebhookEventsTotal counts billing webhook deliveries that were verified and
// reconciled.
var WebhookEventsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Total number of billing webhook deliveries reconciled successfully.",
	},
)

// WebhookErrorsTotal counts billing webhook deliveries that failed.
// Label:
//   - reason: "read" (body read failed) or "reconcile" (verification or state update failed)
var WebhookErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_errors_total",
		Help:      "Total number of billing webhook deliveries that failed.",
	},
	[]string{"reason"},
)

// AssessmentsCreatedTotal counts newly created assessments.
var AssessmentsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessments_created_total",
		Help:      "Total number of assessments created.",
	},
)

// InvitationsCreatedTotal counts candidate invitations issued.
var InvitationsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitations_created_total",
		Help:      "Total number of candidate invitations created.",
	},
)

// SubmissionsScoredTotal counts completed candidate submissions.
// Label:
//   - needs_review: "true" when the submission contains short-text answers
var SubmissionsScoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_scored_total",
		Help:      "Total number of candidate submissions scored.",
	},
	[]string{"needs_review"},
)
