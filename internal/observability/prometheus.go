// Package observability serves the HTTP scrape and probe endpoints of the
// cypherast server.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Prometheus is a scrape endpoint backed by its own registry.
type Prometheus struct {
	// Reader must be handed to the meter provider, usually through
	// observability.WithMetricReader, or the endpoint stays empty.
	Reader sdkmetric.Reader

	// Handler serves the exposition format at /metrics.
	Handler http.Handler
}

// NewPrometheus creates an OTel Prometheus exporter on a fresh registry.
// Go runtime and process collectors are registered alongside.
func NewPrometheus() (*Prometheus, error) {
	registry := prometheus.NewRegistry()

	err := registry.Register(collectors.NewGoCollector())
	if err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	err = registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &Prometheus{
		Reader:  exporter,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}, nil
}
