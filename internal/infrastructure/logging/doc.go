// Package logging provides structured logging for the ICS-2000 core daemon.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 9100)
//	logger.Error("sync failed", "error", err)
//
// # Security
//
// Never log the cloud account password or the gateway AES key. Log key
// prefixes at most:
//
//	logger.Info("authenticated", "aes_key_prefix", key[:8]+"...")
package logging
