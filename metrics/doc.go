// Package metrics provides Prometheus instrumentation for engines and pages.
//
// A nil *Collector is valid and records nothing, so instrumented code never
// has to check whether metrics are enabled.
package metrics
