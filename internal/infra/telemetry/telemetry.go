package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oficinahub/workshop-sync/internal/usecase"
)

// SyncMetrics exposes Prometheus collectors for the versioning and
// sync subsystem. It satisfies usecase.TenantVersionMetrics.
type SyncMetrics struct {
	bumps        prometheus.Counter
	skippedBumps prometheus.Counter
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

var _ usecase.TenantVersionMetrics = (*SyncMetrics)(nil)

// NewSyncMetrics constructs and registers the sync collectors.
func NewSyncMetrics(namespace string, reg prometheus.Registerer) (*SyncMetrics, error) {
	if namespace == "" {
		namespace = "workshop"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &SyncMetrics{
		bumps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "tenant_version_bumps_total",
			Help:      "Total number of tenant version counter increments.",
		}),
		skippedBumps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "tenant_version_bumps_skipped_total",
			Help:      "Mutations whose tenant could not be attributed or whose bump failed.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "tenant_version_cache_hits_total",
			Help:      "Tenant version reads served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "tenant_version_cache_misses_total",
			Help:      "Tenant version reads that fell through to the durable store.",
		}),
	}

	for _, c := range []prometheus.Counter{m.bumps, m.skippedBumps, m.cacheHits, m.cacheMisses} {
		if err := reg.Register(c); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
					_ = existing
					continue
				}
			}
			return nil, err
		}
	}

	return m, nil
}

func (m *SyncMetrics) IncBump()        { m.bumps.Inc() }
func (m *SyncMetrics) IncSkippedBump() { m.skippedBumps.Inc() }
func (m *SyncMetrics) IncCacheHit()    { m.cacheHits.Inc() }
func (m *SyncMetrics) IncCacheMiss()   { m.cacheMisses.Inc() }
