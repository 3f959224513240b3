// Package telemetry wires Prometheus metrics and OpenTelemetry tracing for the
// lock server.
package telemetry
