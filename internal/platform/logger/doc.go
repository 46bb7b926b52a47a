// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured logging
// with configurable log levels. Loggers travel with request contexts; when
// telemetry export is enabled, records are bridged to OpenTelemetry.
package logger
