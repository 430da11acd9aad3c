/*
Package log provides structured logging for releasemgr using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support filtering
by severity level.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all releasemgr packages
  - Thread-safe concurrent writes

Context Loggers:
  - WithComponent: Add component name to all logs
  - WithTrack: Add release track context (e.g. "1.32")
  - WithCharm: Add charm name context
  - WithChannel: Add store channel context (e.g. "1.32/candidate")

# Usage

Initializing the Logger:

	import "github.com/cdkbot/releasemgr/pkg/log"

	// JSON output (CI)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Structured Logging:

	trackLog := log.WithTrack("1.32")
	trackLog.Info().
		Str("channel", "1.32/candidate").
		Int("revision", 741).
		Msg("Evaluating promotion")

	log.Logger.Error().
		Err(err).
		Str("charm", "k8s-worker").
		Msg("Failed to query revision matrix")

# Log Output Examples

JSON Format (CI):

	{"level":"info","track":"1.32","time":"2026-08-23T10:30:00Z","message":"Evaluating promotion"}
	{"level":"error","charm":"k8s-worker","error":"connection refused","time":"2026-08-23T10:30:02Z","message":"Failed to query revision matrix"}

Console Format (local runs):

	10:30:00 INF Evaluating promotion track=1.32
	10:30:02 ERR Failed to query revision matrix charm=k8s-worker error="connection refused"

# Integration Points

This package integrates with:

  - pkg/promote: Logs per-channel promotion decisions
  - pkg/release: Logs track reconciliation and verdicts
  - pkg/sqa: Logs test platform calls
  - pkg/snapstore, pkg/charmhub, pkg/launchpad: Logs store interactions

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing

Context Logger Pattern:
  - Create child loggers with context fields
  - Automatically includes context in all logs
  - Avoids repetitive field specification

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
*/
package log
