// Package observability provides logging, metrics, and tracing plumbing.
package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheErrors counts Redis cache errors by operation type.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_cache_errors_total",
		Help: "Total number of Redis cache errors by operation type",
	}, []string{"operation"})

	// AssetStoreErrors counts asset store failures by operation type.
	AssetStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_asset_store_errors_total",
		Help: "Total number of asset store failures by operation type",
	}, []string{"operation"})

	// NotificationsCreated counts notifications created by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_notifications_created_total",
		Help: "Total number of notifications created by type",
	}, []string{"type"})
)

var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus HTTP middleware for the given service
// name. The middleware registers collectors in the default registry, so
// repeated calls return the instance created first.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New(serviceName)
	})
	return promMiddleware
}
