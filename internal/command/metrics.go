// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for command execution metrics.
const (
	StatusSuccess       = "success"
	StatusError         = "error"
	StatusNotUnderstood = "not_understood"
	StatusRateLimited   = "rate_limited"
)

// CommandExecutions is the counter for command executions.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mossgate_command_executions_total",
		Help: "Total number of command executions",
	},
	[]string{"action", "status"},
)

// CommandDuration is the histogram for command execution duration.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "mossgate_command_duration_seconds",
		Help:    "Command execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"action"},
)

// EmoteExpansions counts unknown tokens resolved through the emote table.
var EmoteExpansions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mossgate_emote_expansions_total",
		Help: "Total number of custom emote expansions",
	},
	[]string{"emote"},
)

// ConversationFallbacks counts unknown input routed to the active NPC
// conversation.
var ConversationFallbacks = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "mossgate_conversation_fallbacks_total",
		Help: "Total number of unknown inputs routed as conversation replies",
	},
)

// RegisterMetrics registers command package metrics with the given
// Prometheus registry. Must be called at startup to make metrics available
// on /metrics. Panics if registration fails.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandExecutions)
	reg.MustRegister(CommandDuration)
	reg.MustRegister(EmoteExpansions)
	reg.MustRegister(ConversationFallbacks)
}

// RecordRateLimited increments the execution counter for a rate-limited
// command.
func RecordRateLimited(action string) {
	CommandExecutions.WithLabelValues(action, StatusRateLimited).Inc()
}

// recorder tracks execution metrics for a single dispatch.
type recorder struct {
	start  time.Time
	action string
	status string
}

func newRecorder(action string) *recorder {
	return &recorder{start: time.Now(), action: action, status: StatusSuccess}
}

func (m *recorder) setStatus(status string) {
	m.status = status
}

func (m *recorder) record() {
	CommandExecutions.WithLabelValues(m.action, m.status).Inc()
	CommandDuration.WithLabelValues(m.action).Observe(time.Since(m.start).Seconds())
}
