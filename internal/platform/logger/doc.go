// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// logging with configurable log levels and output formats (JSON for normal
// runs, text for local development). A request-scoped logger can be carried
// through a context.Context with WithLogger and retrieved with FromContext.
package logger
