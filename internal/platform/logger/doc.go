// Package logger configures structured logging for the client.
//
// It uses Go's standard library log/slog package with a JSON or text handler
// at the configured level. Every handler is wrapped in a RedactingHandler so
// candidate personal data never reaches log output in clear text.
package logger
