package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheSource exposes the figures of the disposable domain cache.
type CacheSource interface {
	CurrentVersion() uint64
	Size() int
}

// RegisterCache registers gauges reading the version and size of cache on
// every scrape.
func RegisterCache(reg prometheus.Registerer, cache CacheSource) error {
	if _, err := register(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "mailguard_domain_cache_version",
		Help: "Version of the active disposable domain set.",
	}, func() float64 { return float64(cache.CurrentVersion()) })); err != nil {
		return fmt.Errorf("could not register cache version gauge: %w", err)
	}
	if _, err := register(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "mailguard_domain_cache_size",
		Help: "Number of domains in the active disposable domain set.",
	}, func() float64 { return float64(cache.Size()) })); err != nil {
		return fmt.Errorf("could not register cache size gauge: %w", err)
	}

	return nil
}
