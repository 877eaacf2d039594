package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

const (
	metricParsesTotal     = "cypherast.parse.total"
	metricParseDuration   = "cypherast.parse.duration.seconds"
	metricParseBytes      = "cypherast.parse.input.bytes"
	metricNodesTotal      = "cypherast.parse.nodes.total"
	metricRootsTotal      = "cypherast.parse.roots.total"
	metricCacheHits       = "cypherast.cache.hits"
	metricCacheMisses     = "cypherast.cache.misses"
	metricCacheEntries    = "cypherast.cache.entries"
	metricCacheBytes      = "cypherast.cache.bytes"
	attrOutcome           = "outcome"
	attrCache             = "cache"
	outcomeSyntaxError    = "syntax_error"
	outcomeConstructError = "construction_error"
	outcomeCanceled       = "canceled"
	outcomeTooLarge       = "too_large"
)

// ParseMetrics records every parse an engine performs. It implements
// cypherast.ParseObserver.
type ParseMetrics struct {
	parsesTotal   metric.Int64Counter
	parseDuration metric.Float64Histogram
	inputBytes    metric.Int64Counter
	nodesTotal    metric.Int64Counter
	rootsTotal    metric.Int64Counter
}

var _ cypherast.ParseObserver = (*ParseMetrics)(nil)

// NewParseMetrics creates the parse instruments from mt.
func NewParseMetrics(mt metric.Meter) (*ParseMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &ParseMetrics{
		parsesTotal:   b.counter(metricParsesTotal, "Parses by outcome", "{parse}"),
		parseDuration: b.histogram(metricParseDuration, "Parse and construction time", "s", durationBucketBoundaries...),
		inputBytes:    b.counter(metricParseBytes, "Query text consumed", "By"),
		nodesTotal:    b.counter(metricNodesTotal, "Host nodes constructed", "{node}"),
		rootsTotal:    b.counter(metricRootsTotal, "Top-level roots produced", "{root}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// ObserveParse implements cypherast.ParseObserver.
func (pm *ParseMetrics) ObserveParse(ctx context.Context, stats cypherast.Stats) {
	if pm == nil {
		return
	}

	outcome := metric.WithAttributes(attribute.String(attrOutcome, parseOutcome(stats.Err)))

	pm.parsesTotal.Add(ctx, 1, outcome)
	pm.parseDuration.Record(ctx, stats.Duration.Seconds(), outcome)
	pm.inputBytes.Add(ctx, int64(stats.InputBytes))
	pm.nodesTotal.Add(ctx, int64(stats.Nodes))
	pm.rootsTotal.Add(ctx, int64(stats.Roots))
}

func parseOutcome(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, cypherast.ErrParse):
		return outcomeSyntaxError
	case errors.Is(err, cypherast.ErrInputTooLarge):
		return outcomeTooLarge
	case errors.Is(err, cypherast.ErrConstruction):
		return outcomeConstructError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return StatusError
	}
}

// CacheStatsProvider exposes cumulative cache statistics.
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
	CacheEntries() int64
	CacheBytes() int64
}

// RegisterCacheMetrics registers observable gauges reading from caches, keyed
// by the cache attribute.
func RegisterCacheMetrics(mt metric.Meter, caches map[string]CacheStatsProvider) error {
	b := newMetricBuilder(mt)

	hits := b.gauge(metricCacheHits, "Cumulative cache hits", "{hit}")
	misses := b.gauge(metricCacheMisses, "Cumulative cache misses", "{miss}")
	entries := b.gauge(metricCacheEntries, "Cached parse results", "{entry}")
	size := b.gauge(metricCacheBytes, "Compressed bytes held by the cache", "By")

	if b.err != nil {
		return b.err
	}

	_, err := mt.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		for name, cache := range caches {
			attrs := metric.WithAttributes(attribute.String(attrCache, name))
			obs.ObserveInt64(hits, cache.CacheHits(), attrs)
			obs.ObserveInt64(misses, cache.CacheMisses(), attrs)
			obs.ObserveInt64(entries, cache.CacheEntries(), attrs)
			obs.ObserveInt64(size, cache.CacheBytes(), attrs)
		}

		return nil
	}, hits, misses, entries, size)
	if err != nil {
		return fmt.Errorf("register cache callback: %w", err)
	}

	return nil
}
