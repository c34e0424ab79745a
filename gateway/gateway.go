package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"disastersheet/cache"
	"disastersheet/llm"
	"disastersheet/metrics"
	"disastersheet/prompt"
)

// EmptyResponsePlaceholder is returned (and cached) when the provider
// responds without any usable content, so one blank answer never interrupts
// a batch.
const EmptyResponsePlaceholder = "No response generated"

// UpstreamError reports that the LLM provider itself failed. The gateway
// never retries; the caller decides whether to skip the image or give up.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream call failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Gateway memoizes classification calls: identical request content within the
// TTL window is answered from the cache without touching the provider.
type Gateway struct {
	client llm.Client
	store  *cache.Cache
	ttl    time.Duration
}

// New creates a Gateway around the given provider and cache. A non-positive
// ttl falls back to cache.DefaultTTL (one hour).
func New(client llm.Client, store *cache.Cache, ttl time.Duration) *Gateway {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Gateway{client: client, store: store, ttl: ttl}
}

// Classify returns the raw answer for the descriptor, consulting the cache
// first. On a miss it calls the provider, substitutes the placeholder for an
// empty completion, and stores the answer before returning it. Concurrent
// misses on the same descriptor may both reach the provider; the last write
// wins.
func (g *Gateway) Classify(d prompt.Descriptor) (string, error) {
	fingerprint := cache.Fingerprint(d.Serialize())

	if value, ok := g.store.Get(fingerprint); ok {
		metrics.CacheHits.Inc()
		log.Debugf("cache hit for fingerprint %.12s", fingerprint)
		return value, nil
	}
	metrics.CacheMisses.Inc()

	answer, err := g.client.Classify(d.Prompt, d.Images)
	if err != nil {
		return "", &UpstreamError{Source: g.client.SourceName(), Err: err}
	}
	if strings.TrimSpace(answer) == "" {
		log.Warnf("%s returned no usable content, substituting placeholder", g.client.SourceName())
		answer = EmptyResponsePlaceholder
	}

	g.store.Set(fingerprint, answer, g.ttl)
	metrics.CacheEntries.Set(float64(g.store.Len()))
	return answer, nil
}
