// Package metrics defines and registers all custom Prometheus metrics for the
// clinic backend. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto and exposed by the /metrics handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthLoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "failure", "throttled" or "rate_limited"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthLoginFailuresTotal counts rejected logins by their internal reason. The
// caller only ever sees the generic message; this keeps the real cause visible.
// Label:
//   - reason: "unknown_email", "bad_password", "inactive" or "external_provider"
var AuthLoginFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_login_failures_total",
		Help:      "Total number of failed logins, by internal reason.",
	},
	[]string{"reason"},
)

// TokenValidationFailuresTotal counts bearer tokens that failed validation.
// Label:
//   - kind: "expired", "malformed", "signature_invalid" or "invalid"
var TokenValidationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validation_failures_total",
		Help:      "Total number of bearer tokens that failed validation, by kind.",
	},
	[]string{"kind"},
)

// AuthGuardRejectionsTotal counts requests the access guard turned away for
// reasons other than token validation.
// Label:
//   - reason: "missing_token", "user_missing" or "user_inactive"
var AuthGuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_guard_rejections_total",
		Help:      "Total number of requests rejected by the access guard, by reason.",
	},
	[]string{"reason"},
)

// AuthAccessDeniedTotal counts authenticated requests refused by a role check.
// Label:
//   - role: the caller's role
var AuthAccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_access_denied_total",
		Help:      "Total number of requests denied because the caller's role is not allowed.",
	},
	[]string{"role"},
)

// AuthRegistrationsTotal counts accounts created through the register endpoint.
// Label:
//   - role: role of the new account
var AuthRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registered accounts, by role.",
	},
	[]string{"role"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by type and outcome.
// Labels:
//   - type: the auth event type (e.g. "login_failed")
//   - result: "persisted", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by type and result.",
	},
	[]string{"type", "result"},
)

// AuditQueueDepth tracks the number of events waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditPersistDuration measures how long persisting a single audit event takes.
var AuditPersistDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_persist_duration_seconds",
		Help:      "Duration of audit event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Patient metrics ───────────────────────────────────────────────────────────

// PatientsCreatedTotal counts newly registered patients.
var PatientsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "patients_created_total",
		Help:      "Total number of patients created.",
	},
)

// PatientsDeactivatedTotal counts patient deactivations.
var PatientsDeactivatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "patients_deactivated_total",
		Help:      "Total number of patients deactivated.",
	},
)
