// Package cli implements the location2stix command-line interface.
//
// # Commands
//
// The main commands are:
//   - generate: Build the location bundle (also the default with no subcommand)
//   - store: Inspect or clear the staging area
//   - graph: Draw the hierarchy of a bundle as DOT, SVG or PNG
//   - serve: Serve a bundle over HTTP
//   - browse: Explore a bundle interactively
//
// # Configuration
//
// Settings come from location2stix.toml in the working directory (or
// --config), overridden by --input, --output, --store, --store-dir and
// --redis-url.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes every relationship as it is created.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Generated 1085 objects (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
