package db

import (
	"context"
	"database/sql"
)

// Querier abstracts database operations for both database and transaction.
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
}

// Database is a pooled connection to a relational store.
type Database interface {
	Querier

	// Dialect describes the SQL flavour spoken by the underlying driver.
	Dialect() Dialect

	// BeginTx starts a new transaction with the given options.
	BeginTx(ctx context.Context, opts *TxOptions) (Transaction, error)

	// Transaction executes fn within a transaction, committing on success and
	// rolling back when fn returns an error.
	Transaction(ctx context.Context, fn func(tx Transaction) error) error

	Ping(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Transaction is a database transaction.
// Commit and Rollback are terminal; calling either twice returns sql.ErrTxDone.
type Transaction interface {
	Querier
	Commit() error
	Rollback() error
}

// Rows is the result of a query.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Row is the result of a query that returns at most one row.
type Row interface {
	Scan(dest ...interface{}) error
}

// Scanner is implemented by both Row and Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Result summarizes an executed statement.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// IsolationLevel is the transaction isolation level.
type IsolationLevel int

const (
	LevelDefault IsolationLevel = iota
	LevelReadCommitted
	LevelRepeatableRead
	LevelSerializable
)

// TxOptions holds the transaction options.
type TxOptions struct {
	Isolation IsolationLevel
	ReadOnly  bool
}

// Stats is a subset of the pool statistics.
type Stats struct {
	MaxOpenConnections int   `json:"max_open_connections"`
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
}

// ConvertTxOptions maps TxOptions onto database/sql options.
func ConvertTxOptions(opts *TxOptions) *sql.TxOptions {
	if opts == nil {
		return nil
	}
	level := sql.LevelDefault
	switch opts.Isolation {
	case LevelReadCommitted:
		level = sql.LevelReadCommitted
	case LevelRepeatableRead:
		level = sql.LevelRepeatableRead
	case LevelSerializable:
		level = sql.LevelSerializable
	}
	return &sql.TxOptions{Isolation: level, ReadOnly: opts.ReadOnly}
}

// ConvertSQLStats maps database/sql pool statistics.
func ConvertSQLStats(s sql.DBStats) Stats {
	return Stats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
	}
}
