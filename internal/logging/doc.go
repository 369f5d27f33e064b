// Package logging assembles structured slog loggers and formatting helpers used
// by the sptnr sync job and trigger daemon.
//
// It owns the console and JSON handlers, the stdout/stderr plus file fan-out
// used to write run logs, and context helpers that tag lines with the run,
// artist, and album being processed. Run log retention pruning lives here as
// well. NewNop gives tests and optional wiring a logger that cannot fail.
package logging
