// Package logging assembles the structured slog logger used by hawarun.
//
// It owns the console and JSON handlers, level parsing, and the request ID
// decoration that lets client diagnostics be matched against daemon logs.
// Output always goes to the writer supplied by the caller (stderr in the CLI)
// because stdout is reserved for the daemon's reply.
//
// There is no package-level logger: construct one with New or NewFromConfig
// at startup and pass it to the components that log. NewNop serves tests and
// wiring code that cannot fail.
package logging
