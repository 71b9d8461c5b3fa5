package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ostanin/backoffice-access/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	requestCounter  prometheus.Counter
	decisionCounter *prometheus.CounterVec
}

// Attach configures telemetry exporters and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	counter := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "access",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	})

	decisions := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "access",
		Name:      "authorization_decisions_total",
		Help:      "Authorization decisions partitioned by outcome",
	}, []string{"outcome"})

	return &Provider{
		requestCounter:  counter,
		decisionCounter: decisions,
	}, nil
}

// RequestCounter exposes the HTTP request metric.
func (p *Provider) RequestCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.requestCounter
}

// RecordDecision counts an authorization outcome ("allow" or "deny").
func (p *Provider) RecordDecision(outcome string) {
	if p == nil || p.decisionCounter == nil {
		return
	}
	p.decisionCounter.WithLabelValues(outcome).Inc()
}
