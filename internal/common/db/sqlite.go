package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// sqlitePragmas are applied to every pooled connection. Foreign keys must be
// enabled per connection for ON DELETE CASCADE to fire.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=journal_mode(WAL)",
	"_pragma=busy_timeout(5000)",
}

// NewSQLite opens (or creates) a SQLite database file.
func NewSQLite(path string) (*SQLDatabase, error) {
	config := DefaultConfig()
	config.Driver = DriverSQLite
	config.DSN = path
	return NewSQLiteWithConfig(config)
}

// NewSQLiteWithConfig opens a SQLite database with custom configuration.
// In-memory databases are not supported: every pooled connection would see
// its own empty database.
func NewSQLiteWithConfig(config *Config) (*SQLDatabase, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.DSN == "" {
		return nil, fmt.Errorf("DSN cannot be empty")
	}
	if strings.Contains(config.DSN, ":memory:") || strings.Contains(config.DSN, "mode=memory") {
		return nil, fmt.Errorf("in-memory sqlite databases are not supported")
	}
	config.ApplyDefaults()

	sqlDB, err := sql.Open("sqlite", sqliteDSN(config.DSN))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	return openVerified(sqlDB, SQLiteDialect, config)
}

func sqliteDSN(dsn string) string {
	var missing []string
	for _, pragma := range sqlitePragmas {
		name := pragma[:strings.Index(pragma, "(")]
		if !strings.Contains(dsn, name) {
			missing = append(missing, pragma)
		}
	}
	if len(missing) == 0 {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&")
}
