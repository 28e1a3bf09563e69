// Package metrics exposes Prometheus counters for engine activity, wired in
// through the engine's lifecycle hooks.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/parleybot/parley/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Turns            prometheus.Counter
	IntentsStarted   *prometheus.CounterVec
	IntentsCompleted *prometheus.CounterVec
	IntentsDeferred  *prometheus.CounterVec
	Escalations      *prometheus.CounterVec
	Fulfillments     *prometheus.CounterVec
}

// New creates and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Turns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_turns_total",
			Help: "Total turns processed.",
		}),
		IntentsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_intents_started_total",
			Help: "Intents activated, by intent name.",
		}, []string{"intent"}),
		IntentsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_intents_completed_total",
			Help: "Intents completed, by intent name.",
		}, []string{"intent"}),
		IntentsDeferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_intents_deferred_total",
			Help: "Intents deferred by an interruption, by intent name.",
		}, []string{"intent"}),
		Escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_escalations_total",
			Help: "Attempt-limit escalations, by axis.",
		}, []string{"axis"}),
		Fulfillments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_fulfillments_total",
			Help: "Fulfillment dispatches, by intent name and outcome.",
		}, []string{"intent", "outcome"}),
	}
	reg.MustRegister(
		m.Turns,
		m.IntentsStarted,
		m.IntentsCompleted,
		m.IntentsDeferred,
		m.Escalations,
		m.Fulfillments,
	)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, sessionID string, input domain.Input) {
			m.Turns.Inc()
		},
		OnIntentStart: func(ctx context.Context, sessionID, intent string) {
			m.IntentsStarted.WithLabelValues(intent).Inc()
		},
		OnIntentDefer: func(ctx context.Context, sessionID, intent string) {
			m.IntentsDeferred.WithLabelValues(intent).Inc()
		},
		OnIntentComplete: func(ctx context.Context, sessionID, intent string) {
			m.IntentsCompleted.WithLabelValues(intent).Inc()
		},
		OnEscalation: func(ctx context.Context, sessionID string, axis domain.EscalationAxis) {
			m.Escalations.WithLabelValues(string(axis)).Inc()
		},
		OnFulfillment: func(ctx context.Context, sessionID, intent string, result domain.FulfillmentResult) {
			outcome := "failure"
			if result.Success {
				outcome = "success"
			}
			m.Fulfillments.WithLabelValues(intent, outcome).Inc()
		},
	}
}

// Merge chains two hook sets so both observers fire.
func Merge(a, b domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, sessionID string, input domain.Input) {
			if a.OnTurnStart != nil {
				a.OnTurnStart(ctx, sessionID, input)
			}
			if b.OnTurnStart != nil {
				b.OnTurnStart(ctx, sessionID, input)
			}
		},
		OnIntentStart: func(ctx context.Context, sessionID, intent string) {
			if a.OnIntentStart != nil {
				a.OnIntentStart(ctx, sessionID, intent)
			}
			if b.OnIntentStart != nil {
				b.OnIntentStart(ctx, sessionID, intent)
			}
		},
		OnIntentDefer: func(ctx context.Context, sessionID, intent string) {
			if a.OnIntentDefer != nil {
				a.OnIntentDefer(ctx, sessionID, intent)
			}
			if b.OnIntentDefer != nil {
				b.OnIntentDefer(ctx, sessionID, intent)
			}
		},
		OnIntentResume: func(ctx context.Context, sessionID, intent string) {
			if a.OnIntentResume != nil {
				a.OnIntentResume(ctx, sessionID, intent)
			}
			if b.OnIntentResume != nil {
				b.OnIntentResume(ctx, sessionID, intent)
			}
		},
		OnIntentComplete: func(ctx context.Context, sessionID, intent string) {
			if a.OnIntentComplete != nil {
				a.OnIntentComplete(ctx, sessionID, intent)
			}
			if b.OnIntentComplete != nil {
				b.OnIntentComplete(ctx, sessionID, intent)
			}
		},
		OnEscalation: func(ctx context.Context, sessionID string, axis domain.EscalationAxis) {
			if a.OnEscalation != nil {
				a.OnEscalation(ctx, sessionID, axis)
			}
			if b.OnEscalation != nil {
				b.OnEscalation(ctx, sessionID, axis)
			}
		},
		OnFulfillment: func(ctx context.Context, sessionID, intent string, result domain.FulfillmentResult) {
			if a.OnFulfillment != nil {
				a.OnFulfillment(ctx, sessionID, intent, result)
			}
			if b.OnFulfillment != nil {
				b.OnFulfillment(ctx, sessionID, intent, result)
			}
		},
	}
}
