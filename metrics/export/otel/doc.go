// Package otel exports core counters through OpenTelemetry observable
// instruments. Values are read only inside the meter's collection
// callback, so export cadence is entirely the SDK's concern and the core
// hot paths stay allocation-free.
package otel
