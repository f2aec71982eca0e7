// Package logging wires log/slog for the anchor CLI.
//
// It provides a console handler tuned for interactive runs (timestamp, level,
// component prefix, key=value attrs) and a JSON handler for machine
// consumption, plus typed attribute helpers and a no-op logger for tests.
package logging
