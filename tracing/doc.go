// Package tracing wraps OpenTelemetry span management for the orchestrator.
// Instrumentation lives in its own package so applications that do not need
// tracing can leave it uninitialised; spans then become no-ops.
package tracing
