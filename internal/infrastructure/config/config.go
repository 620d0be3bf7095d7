package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the ICS-2000 core daemon.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Cloud    CloudConfig    `yaml:"cloud"`
	Devices  DevicesConfig  `yaml:"devices"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig contains installation-specific information.
// The timezone determines local midnight for the daily scheduled refresh.
type SiteConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// CloudConfig contains the trustsmartcloud2.com account settings.
//
// Email, password and the gateway MAC address identify the account; the MAC
// is normalised to uppercase without separators before use. The optional IP
// address points at the gateway on the local network and is informational
// only — all traffic in this daemon goes through the cloud endpoints.
type CloudConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	MAC      string `yaml:"mac"`
	IP       string `yaml:"ip"`

	// Tries is the number of attempts for a device command; Sleep is the
	// pause between attempts in milliseconds. Sync and login are never
	// retried — the next scheduled or manual refresh is the retry.
	Tries int `yaml:"tries"`
	Sleep int `yaml:"sleep"`

	// Timeout is the HTTP timeout for cloud requests, in seconds.
	Timeout int `yaml:"timeout"`
}

// DevicesConfig contains device and scene presentation options.
type DevicesConfig struct {
	// ShowScenes exposes cloud scenes through the API when true.
	ShowScenes bool `yaml:"show_scenes"`

	// EntityBlacklist is a comma-separated list of entity ids to exclude
	// from the device cache at sync time.
	EntityBlacklist string `yaml:"entity_blacklist"`

	// DiscoverMessage is a free-form note logged when devices are
	// discovered. Kept for parity with existing installs.
	DiscoverMessage string `yaml:"discover_message"`
}

// APIConfig contains the optional local REST server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings, in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains optional MQTT state publishing settings.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
	Topic   string           `yaml:"topic"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains optional InfluxDB state history settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ICS2000_SECTION_KEY
// For example: ICS2000_CLOUD_EMAIL, ICS2000_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Normalise the MAC before validation so both forms are accepted
	cfg.Cloud.MAC = NormaliseMAC(cfg.Cloud.MAC)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Name:     "ICS-2000",
			Timezone: "UTC",
		},
		Cloud: CloudConfig{
			Tries:   3,
			Sleep:   100,
			Timeout: 10,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 9100,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/ics2000.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "ics2000d",
			},
			QoS:   1,
			Topic: "kaku",
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ICS2000_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Cloud credentials
	if v := os.Getenv("ICS2000_CLOUD_EMAIL"); v != "" {
		cfg.Cloud.Email = v
	}
	if v := os.Getenv("ICS2000_CLOUD_PASSWORD"); v != "" {
		cfg.Cloud.Password = v
	}
	if v := os.Getenv("ICS2000_CLOUD_MAC"); v != "" {
		cfg.Cloud.MAC = v
	}

	// Database
	if v := os.Getenv("ICS2000_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("ICS2000_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ICS2000_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ICS2000_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("ICS2000_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Cloud validation — the account is not optional
	if c.Cloud.Email == "" {
		errs = append(errs, "cloud.email is required")
	}
	if c.Cloud.Password == "" {
		errs = append(errs, "cloud.password is required")
	}
	if c.Cloud.MAC == "" {
		errs = append(errs, "cloud.mac is required")
	} else if len(c.Cloud.MAC) != macHexLength {
		errs = append(errs, fmt.Sprintf("cloud.mac must be %d hex digits, got %q", macHexLength, c.Cloud.MAC))
	}
	if c.Cloud.Tries < 1 {
		errs = append(errs, "cloud.tries must be at least 1")
	}
	if c.Cloud.Sleep < 0 {
		errs = append(errs, "cloud.sleep must not be negative")
	}

	// Site validation
	if c.Site.Timezone != "" {
		if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("site.timezone %q is not a valid IANA timezone", c.Site.Timezone))
		}
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, fmt.Sprintf("api.port %d is out of range", c.API.Port))
	}

	// MQTT validation
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Sprintf("mqtt.qos %d is invalid (must be 0, 1, or 2)", c.MQTT.QoS))
		}
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// macHexLength is the expected length of a gateway MAC after normalisation.
const macHexLength = 12

// NormaliseMAC strips separators from a MAC address and uppercases it.
// Both "AA:BB:CC:DD:EE:FF" and "aabbccddeeff" normalise to "AABBCCDDEEFF".
func NormaliseMAC(mac string) string {
	mac = strings.ReplaceAll(mac, ":", "")
	mac = strings.ReplaceAll(mac, "-", "")
	return strings.ToUpper(strings.TrimSpace(mac))
}

// Location returns the configured site timezone as a *time.Location.
// Falls back to UTC if the timezone is empty or invalid; Validate reports
// invalid values at load time.
func (c *Config) Location() *time.Location {
	if c.Site.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetReadTimeout returns the API read timeout as a time.Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a time.Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a time.Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// CommandSleep returns the pause between command attempts as a time.Duration.
func (c *CloudConfig) CommandSleep() time.Duration {
	return time.Duration(c.Sleep) * time.Millisecond
}

// HTTPTimeout returns the cloud HTTP timeout as a time.Duration.
func (c *CloudConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
