// Package metrics defines and registers the custom Prometheus metrics of the
// portal. It is the single source of truth for metric names, labels, and help
// strings. All metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts completed login calls.
// Label:
//   - result: "success", "rejected", "error" or "superseded"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logouts that changed local state.
// Label:
//   - remote: "ok", "failed" or "skipped" (no token to revoke)
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts, by outcome of the remote revoke call.",
	},
	[]string{"remote"},
)

// ValidationsTotal counts token validations against the auth service.
// Label:
//   - result: "valid", "invalid", "expired" (rejected locally) or "error"
var ValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validations_total",
		Help:      "Total number of session validations, by result.",
	},
	[]string{"result"},
)

// StaleResultsTotal counts async results dropped because a newer session
// operation started while they were in flight.
// Label:
//   - operation: "initialize" or "login"
var StaleResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_results_total",
		Help:      "Total number of session results discarded as stale.",
	},
	[]string{"operation"},
)

// SessionStatus is 1 for the current session status and 0 for the others.
// Label:
//   - status: "unknown", "validating", "authenticated", "unauthenticated"
var SessionStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_status",
		Help:      "Current session status (1 for the active status).",
	},
	[]string{"status"},
)

// CredentialStoreErrorsTotal counts credential backend failures.
// Label:
//   - op: "load", "save" or "clear"
var CredentialStoreErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_store_errors_total",
		Help:      "Total number of credential store failures, by operation.",
	},
	[]string{"op"},
)

// ── Access metrics ────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - variant: "protected" or "public"
//   - decision: "placeholder", "render" or "redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"variant", "decision"},
)

// ScopeResolutionsTotal counts resolved data-screen scopes.
// Labels:
//   - screen: e.g. "accounts", "cards"
//   - kind: "own" or "all"
var ScopeResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scope_resolutions_total",
		Help:      "Total number of data-screen scope resolutions.",
	},
	[]string{"screen", "kind"},
)

// BackendRequestDuration measures backend read latency.
// Label:
//   - code: HTTP status code, or "error" for transport failures
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of bearer-authenticated backend reads.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"code"},
)

var statuses = []string{"unknown", "validating", "authenticated", "unauthenticated"}

// SetSessionStatus flips the SessionStatus gauge to current.
func SetSessionStatus(current string) {
	for _, s := range statuses {
		v := 0.0
		if s == current {
			v = 1
		}
		SessionStatus.WithLabelValues(s).Set(v)
	}
}
