package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// NewMySQL creates a new MySQL database connection with connection pool
// DSN format: "user:password@tcp(host:port)/dbname?parseTime=true&loc=Local"
func NewMySQL(dsn string) (*SQLDatabase, error) {
	config := DefaultConfig()
	config.Driver = DriverMySQL
	config.DSN = dsn
	return NewMySQLWithConfig(config)
}

// NewMySQLWithConfig creates a new MySQL database connection with custom configuration.
// Affected-row counts report matched rows (clientFoundRows) so an update that
// leaves a row unchanged is not mistaken for a missing row.
func NewMySQLWithConfig(config *Config) (*SQLDatabase, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.DSN == "" {
		return nil, fmt.Errorf("DSN cannot be empty")
	}
	config.ApplyDefaults()

	driverConfig, err := mysql.ParseDSN(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	driverConfig.ClientFoundRows = true
	driverConfig.ParseTime = true

	connector, err := mysql.NewConnector(driverConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}

	return openVerified(sql.OpenDB(connector), MySQLDialect, config)
}

// openVerified configures the pool and pings it before handing it out.
func openVerified(sqlDB *sql.DB, dialect Dialect, config *Config) (*SQLDatabase, error) {
	database := newSQLDatabase(sqlDB, dialect, config)

	ctx, cancel := context.WithTimeout(context.Background(), config.PingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return database, nil
}
