package db

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// NewPostgreSQL creates a new PostgreSQL database connection with connection pool
// DSN format: "user=postgres password=password host=localhost port=5432 dbname=dbname sslmode=disable"
func NewPostgreSQL(dsn string) (*SQLDatabase, error) {
	config := DefaultConfig()
	config.Driver = DriverPostgres
	config.DSN = dsn
	return NewPostgreSQLWithConfig(config)
}

// NewPostgreSQLWithConfig creates a new PostgreSQL database connection with custom configuration
func NewPostgreSQLWithConfig(config *Config) (*SQLDatabase, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.DSN == "" {
		return nil, fmt.Errorf("DSN cannot be empty")
	}
	config.ApplyDefaults()

	connector, err := pq.NewConnector(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	return openVerified(sql.OpenDB(connector), PostgresDialect, config)
}
