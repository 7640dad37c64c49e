// Package otel provides OpenTelemetry metric exporter bindings for goGuard counters and
// histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each goGuard metric
// and Int64ObservableGauge per histogram bucket. A single callback reads
// [goGuard.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel
