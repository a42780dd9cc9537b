// Package observability exports engine lifecycle activity as Prometheus
// metrics.
//
// It plugs into the engine purely through domain.LifecycleHooks, so the
// engine core stays free of any metrics dependency.
package observability
