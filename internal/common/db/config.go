package db

import (
	"fmt"
	"strings"
	"time"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the configuration for a pooled database connection.
type Config struct {
	// Driver selects the engine: mysql, postgres or sqlite.
	Driver string `yaml:"driver"`

	// DSN is the data source name
	//   mysql:    "user:password@tcp(host:port)/dbname?parseTime=true"
	//   postgres: "user=postgres password=password host=localhost port=5432 dbname=dbname sslmode=disable"
	//   sqlite:   "file:/var/lib/geoatlas/geo.db"
	DSN string `yaml:"dsn"`

	// MaxOpenConnections is the maximum number of open connections to the database
	// Default: 25
	MaxOpenConnections int `yaml:"maxOpenConnections"`

	// MaxIdleConnections is the maximum number of connections in the idle connection pool
	// Default: 5
	MaxIdleConnections int `yaml:"maxIdleConnections"`

	// ConnMaxLifetime is the maximum amount of time a connection may be reused
	// Default: 5 minutes
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle
	// Default: 10 minutes
	ConnMaxIdleTime time.Duration `yaml:"connMaxIdleTime"`

	// PingTimeout bounds the connectivity check performed on open.
	// Default: 5 seconds
	PingTimeout time.Duration `yaml:"pingTimeout"`
}

// DefaultConfig returns the default pool configuration
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConnections: 25,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    5 * time.Minute,
		ConnMaxIdleTime:    10 * time.Minute,
		PingTimeout:        5 * time.Second,
	}
}

// ApplyDefaults fills unset pool settings.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.MaxOpenConnections == 0 {
		c.MaxOpenConnections = defaults.MaxOpenConnections
	}
	if c.MaxIdleConnections == 0 {
		c.MaxIdleConnections = defaults.MaxIdleConnections
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = defaults.ConnMaxIdleTime
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = defaults.PingTimeout
	}
}

// Open connects to the engine named by config.Driver.
func Open(config *Config) (*SQLDatabase, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	switch strings.ToLower(strings.TrimSpace(config.Driver)) {
	case DriverMySQL:
		return NewMySQLWithConfig(config)
	case DriverPostgres, "postgresql":
		return NewPostgreSQLWithConfig(config)
	case DriverSQLite, "sqlite3":
		return NewSQLiteWithConfig(config)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
}
