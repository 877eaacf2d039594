// Package cache keeps recently parsed query results in memory as
// lz4-compressed JSON, keyed by the SHA-256 of the query text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
)

const (
	tracerName = "cypherast"

	// defaultSampleSize is the eviction sample for cost-aware eviction.
	defaultSampleSize = 5
)

// Key identifies a query under a namespace such as the parser settings.
type Key [sha256.Size]byte

// KeyFor hashes namespace and text.
func KeyFor(namespace, text string) Key {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(text))

	var key Key

	copy(key[:], h.Sum(nil))

	return key
}

// Config sizes a ForestCache.
type Config struct {
	// Namespace separates results produced under different parser settings.
	Namespace  string
	MaxEntries int
	MaxBytes   int64
}

// ForestCache stores serialized forests. It is safe for concurrent use.
type ForestCache struct {
	namespace string
	lru       *LRU[Key, []byte]
	tracer    trace.Tracer
}

var _ observability.CacheStatsProvider = (*ForestCache)(nil)

// New creates a ForestCache.
func New(cfg Config) *ForestCache {
	opts := []LRUOption[Key, []byte]{WithCostEviction[Key, []byte](defaultSampleSize)}

	if cfg.MaxEntries > 0 {
		opts = append(opts, WithMaxEntries[Key, []byte](cfg.MaxEntries))
	}

	if cfg.MaxBytes > 0 {
		opts = append(opts, WithMaxBytes[Key](cfg.MaxBytes, func(block []byte) int64 { return int64(len(block)) }))
	}

	return &ForestCache{
		namespace: cfg.Namespace,
		lru:       NewLRU(opts...),
		tracer:    otel.Tracer(tracerName),
	}
}

// Get returns the cached JSON for text.
func (fc *ForestCache) Get(ctx context.Context, text string) (json.RawMessage, bool) {
	_, span := fc.tracer.Start(ctx, observability.SpanCacheLookup)
	defer span.End()

	block, ok := fc.lru.Get(KeyFor(fc.namespace, text))
	span.SetAttributes(attribute.Bool("cache.hit", ok))

	if !ok {
		return nil, false
	}

	raw, err := decompress(block)
	if err != nil {
		span.RecordError(err)
		fc.lru.Delete(KeyFor(fc.namespace, text))

		return nil, false
	}

	return raw, true
}

// Put stores raw JSON for text. It reports false when raw alone exceeds the
// byte budget.
func (fc *ForestCache) Put(text string, raw json.RawMessage) bool {
	return fc.lru.Put(KeyFor(fc.namespace, text), compress(raw))
}

// GetOrCompute returns the cached JSON for text or calls compute, marshals
// its result and caches it. Errors from compute are returned and not cached.
func (fc *ForestCache) GetOrCompute(
	ctx context.Context, text string, compute func(context.Context) (any, error),
) (json.RawMessage, bool, error) {
	if raw, ok := fc.Get(ctx, text); ok {
		return raw, true, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, false, fmt.Errorf("marshal cached value: %w", err)
	}

	fc.Put(text, raw)

	return raw, false, nil
}

// Clear drops every entry.
func (fc *ForestCache) Clear() { fc.lru.Clear() }

// Stats returns a snapshot of the counters.
func (fc *ForestCache) Stats() Stats { return fc.lru.Stats() }

// CacheHits implements observability.CacheStatsProvider.
func (fc *ForestCache) CacheHits() int64 { return fc.lru.hits.Load() }

// CacheMisses implements observability.CacheStatsProvider.
func (fc *ForestCache) CacheMisses() int64 { return fc.lru.misses.Load() }

// CacheEntries implements observability.CacheStatsProvider.
func (fc *ForestCache) CacheEntries() int64 { return int64(fc.lru.Len()) }

// CacheBytes implements observability.CacheStatsProvider.
func (fc *ForestCache) CacheBytes() int64 { return fc.lru.Size() }
