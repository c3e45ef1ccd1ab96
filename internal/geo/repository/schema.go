package repository

import (
	"context"
	"fmt"

	"geoatlas/internal/common/db"
)

// EnsureSchema creates the four tables and their indexes when missing.
// It is a bootstrap helper, not a migration tool: existing tables are left alone.
func EnsureSchema(ctx context.Context, database db.Database) error {
	statements, err := schemaStatements(database.Dialect())
	if err != nil {
		return err
	}
	// MySQL commits DDL implicitly; the other engines create all tables or none.
	return database.Transaction(ctx, func(tx db.Transaction) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("ensure schema failed: %w", err)
			}
		}
		return nil
	})
}

func schemaStatements(dialect db.Dialect) ([]string, error) {
	switch dialect.Name() {
	case "mysql":
		return mysqlSchema, nil
	case "postgres":
		return postgresSchema, nil
	case "sqlite":
		return sqliteSchema, nil
	default:
		return nil, fmt.Errorf("no schema for dialect %q", dialect.Name())
	}
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS continents (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		INDEX idx_continents_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS countries (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		continent_id BIGINT NULL,
		INDEX idx_countries_name (name),
		CONSTRAINT fk_countries_continent FOREIGN KEY (continent_id) REFERENCES continents (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS provinces (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		country_id BIGINT NULL,
		INDEX idx_provinces_name (name),
		CONSTRAINT fk_provinces_country FOREIGN KEY (country_id) REFERENCES countries (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS cities (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		province_id BIGINT NULL,
		country_id BIGINT NULL,
		INDEX idx_cities_name (name),
		CONSTRAINT fk_cities_province FOREIGN KEY (province_id) REFERENCES provinces (id) ON DELETE CASCADE,
		CONSTRAINT fk_cities_country FOREIGN KEY (country_id) REFERENCES countries (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS continents (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_continents_name ON continents (name)`,
	`CREATE TABLE IF NOT EXISTS countries (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		continent_id BIGINT NULL REFERENCES continents (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_countries_name ON countries (name)`,
	`CREATE INDEX IF NOT EXISTS idx_countries_continent_id ON countries (continent_id)`,
	`CREATE TABLE IF NOT EXISTS provinces (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		country_id BIGINT NULL REFERENCES countries (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_provinces_name ON provinces (name)`,
	`CREATE INDEX IF NOT EXISTS idx_provinces_country_id ON provinces (country_id)`,
	`CREATE TABLE IF NOT EXISTS cities (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		province_id BIGINT NULL REFERENCES provinces (id) ON DELETE CASCADE,
		country_id BIGINT NULL REFERENCES countries (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cities_name ON cities (name)`,
	`CREATE INDEX IF NOT EXISTS idx_cities_province_id ON cities (province_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cities_country_id ON cities (country_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS continents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(100) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_continents_name ON continents (name)`,
	`CREATE TABLE IF NOT EXISTS countries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(100) NOT NULL,
		continent_id INTEGER NULL REFERENCES continents (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_countries_name ON countries (name)`,
	`CREATE INDEX IF NOT EXISTS idx_countries_continent_id ON countries (continent_id)`,
	`CREATE TABLE IF NOT EXISTS provinces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(100) NOT NULL,
		country_id INTEGER NULL REFERENCES countries (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_provinces_name ON provinces (name)`,
	`CREATE INDEX IF NOT EXISTS idx_provinces_country_id ON provinces (country_id)`,
	`CREATE TABLE IF NOT EXISTS cities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(100) NOT NULL,
		province_id INTEGER NULL REFERENCES provinces (id) ON DELETE CASCADE,
		country_id INTEGER NULL REFERENCES countries (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cities_name ON cities (name)`,
	`CREATE INDEX IF NOT EXISTS idx_cities_province_id ON cities (province_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cities_country_id ON cities (country_id)`,
}
