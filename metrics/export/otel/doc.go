// Package otel bridges the client's in-process counters into OpenTelemetry
// observable instruments. Registration is pull-based: the meter callback
// reads a fresh [otpflow.MetricsSnapshot] on every collection, so the client
// itself never depends on the otel SDK.
package otel
