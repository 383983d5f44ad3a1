// Package logging builds the slog loggers used throughout takeoutfix.
//
// Two output formats are supported: a compact console format for interactive
// runs and JSON for machine consumption. Batch runs additionally append to a
// diagnostic log file under the configured log directory so warnings emitted
// over large trees remain auditable after the terminal scrollback is gone.
package logging
