// Package config provides configuration loading for the ICS-2000 core daemon.
//
// Configuration is loaded from a single YAML file, with defaults applied
// first, file values layered on top, and environment variables (ICS2000_*)
// taking final precedence. The loaded configuration is validated before use;
// the daemon refuses to start on an invalid configuration.
//
// # Sections
//
//   - site:     installation name and timezone (drives the midnight refresh)
//   - cloud:    trustsmartcloud2.com account credentials and gateway MAC
//   - devices:  entity blacklist, scene visibility, discovery message
//   - api:      optional local REST server (read-only mirror of the cache)
//   - database: SQLite path for last-known device state
//   - mqtt:     optional retained state publishing
//   - influxdb: optional state history sink
//   - logging:  level, format, output
//
// # Environment Overrides
//
// Secrets should not live in the YAML file on shared systems. The most
// sensitive values can be supplied via environment variables:
//
//	ICS2000_CLOUD_EMAIL, ICS2000_CLOUD_PASSWORD, ICS2000_CLOUD_MAC,
//	ICS2000_DATABASE_PATH, ICS2000_MQTT_PASSWORD, ICS2000_INFLUXDB_TOKEN
package config
