package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheShared = "shared"
	cacheError  = "error"
)

var mCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mls_cache_requests_total",
	Help: "Number of cache lookups, by cache and result (hit, miss, shared in-flight fetch, error).",
}, []string{"cache", "result"})
