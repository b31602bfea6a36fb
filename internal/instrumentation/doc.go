// Package instrumentation provides OpenTelemetry metrics and tracing
// for the outlookmail client.
//
// The Provider owns meter and tracer providers configured from the
// environment (see Config / DefaultConfig). Metrics exporters can be
// prometheus (pull), otlp (push) or stdout (development); tracing is
// off by default and can export via otlp or stdout.
//
// The Metrics recorder observes every mail API round trip: request
// count, duration and failures by error kind. A nil recorder is a
// valid no-op, so the client works unchanged with instrumentation
// disabled.
package instrumentation
