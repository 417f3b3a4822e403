// Package metrics defines and registers all custom Prometheus metrics for
// the talent-marketplace gateway. It is the single source of truth for
// metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

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

// RegistrationsTotal counts account registrations.
// Label:
//   - result: "success" or "failure"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts route-guard outcomes.
// Labels:
//   - guard: "protected" or "public"
//   - decision: "allow", "redirect_login", or "redirect_home"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route-guard decisions, by guard and decision.",
	},
	[]string{"guard", "decision"},
)

// DashboardFetchesTotal counts dashboard payload fetches.
// Labels:
//   - role: "talent", "recruiter", or "admin"
//   - result: "success" or "failure"
var DashboardFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_fetches_total",
		Help:      "Total number of dashboard fetches, by role and result.",
	},
	[]string{"role", "result"},
)

// ActiveClientSessions tracks how many client session stores the resolver
// currently holds.
var ActiveClientSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_client_sessions",
		Help:      "Number of client session stores held by the session resolver.",
	},
)
