// Package logging provides logging utilities for git-context.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("switching context", "from", current, "to", target)
//	logging.Warn("restore conflict", "path", rel, "context", name)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Already in context %s", name)
//	logging.UserSuccess("Switched to context %s", name)
//	logging.UserWarning("%s already existed in the working tree; overwritten", path)
//	logging.UserError("%v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// Both destinations can be redirected with SetOutput (tests do this).
//
// # Status Indicators
//
// User functions prepend status indicators:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
