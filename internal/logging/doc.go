// Package logging assembles the structured slog loggers used across
// auditsnap.
//
// It owns the console and JSON handlers, level parsing and output routing,
// and a few attribute helpers so components tag log lines the same way. The
// console handler renders "<ts> <LEVEL> <component>: <msg> key=value ...".
package logging
