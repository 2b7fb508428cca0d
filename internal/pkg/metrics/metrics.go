// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm_llm_requests_total",
			Help: "Total number of LLM calls by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pm_llm_request_duration_seconds",
			Help:    "Duration of LLM calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"operation"},
	)

	ReplyParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm_reply_parse_failures_total",
			Help: "Model replies that fell back to the placeholder",
		},
		[]string{"kind"},
	)

	NotificationEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm_notification_emails_total",
			Help: "Submission notice emails by outcome",
		},
		[]string{"status"},
	)

	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm_wizard_transitions_total",
			Help: "Completed wizard transitions by stage and target step",
		},
		[]string{"stage", "step"},
	)

	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pm_chat_turns_total",
			Help: "Chat turns by delivery mode",
		},
		[]string{"mode"},
	)
)
