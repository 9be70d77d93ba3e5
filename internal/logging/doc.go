// Package logging builds the slog loggers used across bilimux and provides
// small typed attribute helpers so call sites stay terse.
package logging
