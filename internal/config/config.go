// Package config provides centralized configuration management for userdb.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Store   StoreConfig
	Sources SourcesConfig
	Output  OutputConfig
	Ingest  IngestConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// StoreConfig holds database connection settings.
type StoreConfig struct {
	// DSN is a SQLite file path or a postgres:// URL (default: users.db)
	// Supports both USERDB_DSN and DATABASE_URL env vars
	DSN string `env:"USERDB_DSN" envAlt:"DATABASE_URL" default:"users.db"`

	// MaxOpenConns is the maximum number of open connections (default: 4)
	MaxOpenConns int `env:"DB_MAX_OPEN_CONNS" default:"4"`

	// MaxIdleConns is the maximum number of idle connections (default: 2)
	MaxIdleConns int `env:"DB_MAX_IDLE_CONNS" default:"2"`

	// ConnMaxLifetime is the maximum lifetime of a connection (default: 1h)
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" default:"1h"`

	// ConnMaxIdleTime is the maximum idle time before a connection is closed (default: 30m)
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" default:"30m"`

	// QueryTimeout bounds a single query command (default: 30s)
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" default:"30s"`
}

// SourcesConfig lists the input files. Sources are read in the order
// JSON, CSV, XML, each list in the order given, unless a manifest is set.
type SourcesConfig struct {
	JSON []string `env:"SOURCE_JSON" default:"Data/users.json"`
	CSV  []string `env:"SOURCE_CSV" default:"Data/users_1.csv,Data/users_2.csv"`
	XML  []string `env:"SOURCE_XML" default:"Data/users_1.xml,Data/users_2.xml"`

	// Manifest is an optional YAML file listing sources explicitly.
	// When set it replaces the three lists above.
	Manifest string `env:"SOURCE_MANIFEST"`
}

// OutputConfig holds artifact settings.
type OutputConfig struct {
	// Dir receives the canonical artifact after each ingest; empty disables it
	Dir string `env:"OUTPUT_DIR"`
}

// IngestConfig holds ingestion run settings.
type IngestConfig struct {
	// Timeout is the maximum duration of a full ingest run (default: 10m)
	Timeout time.Duration `env:"INGEST_TIMEOUT" default:"10m"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`

	// RateLimitPerMinute caps requests per client IP; 0 disables (default: 60)
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" default:"60"`

	// MaxConcurrent caps commands running at once (default: 8)
	MaxConcurrent int `env:"SERVER_MAX_CONCURRENT" default:"8"`

	// MaxWait is how long a command waits for a free slot (default: 5s)
	MaxWait time.Duration `env:"SERVER_MAX_WAIT" default:"5s"`

	// TrustedProxies lists CIDRs whose X-Real-IP/X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// SourceFile is one input file and its format tag.
type SourceFile struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// Files returns the configured sources in read order. Manifest sources
// must be loaded with LoadManifest; Files only covers the env lists.
func (c *SourcesConfig) Files() []SourceFile {
	files := make([]SourceFile, 0, len(c.JSON)+len(c.CSV)+len(c.XML))
	for _, p := range c.JSON {
		files = append(files, SourceFile{Path: p, Format: "json"})
	}
	for _, p := range c.CSV {
		files = append(files, SourceFile{Path: p, Format: "csv"})
	}
	for _, p := range c.XML {
		files = append(files, SourceFile{Path: p, Format: "xml"})
	}
	return files
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
