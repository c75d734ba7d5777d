/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured log lines.

Both are plain domain.LifecycleHooks values and can be merged:

	hooks := observability.LoggingHooks(logger).Merge(metrics.Hooks())
*/
package observability
