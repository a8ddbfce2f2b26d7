// Package logging provides structured logging utilities for remote-ticktick-mcp.
//
// This package centralizes logging patterns so every component logs with the
// same attribute names, using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger scoped to an operation:
//
//	logger := logging.WithOperation(slog.Default(), "projects.list")
//	logger.Info("listing projects", logging.Status(logging.StatusSuccess))
//
// Describe an upstream request:
//
//	logger.Warn("rate limited",
//	    logging.Method("GET"),
//	    logging.Path("/project"),
//	    logging.Attempt(1))
//
// # Security Considerations
//
// Access and refresh tokens are never logged. Use SanitizeToken for a length
// indicator or Fingerprint for a stable, non-reversible identifier.
package logging
