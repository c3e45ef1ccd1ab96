package db

import "strconv"

// Dialect captures the differences between the supported SQL engines that
// repositories have to care about when building statements.
type Dialect interface {
	// Name returns the driver family: "mysql", "postgres" or "sqlite".
	Name() string

	// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
	Placeholder(n int) string

	// RepeatableRead returns the isolation level used for units of work.
	RepeatableRead() IsolationLevel

	// ReturningID reports whether inserts must use RETURNING id instead of
	// Result.LastInsertId.
	ReturningID() bool
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string                   { return "mysql" }
func (mysqlDialect) Placeholder(int) string         { return "?" }
func (mysqlDialect) RepeatableRead() IsolationLevel { return LevelRepeatableRead }
func (mysqlDialect) ReturningID() bool              { return false }

type postgresDialect struct{}

func (postgresDialect) Name() string                   { return "postgres" }
func (postgresDialect) Placeholder(n int) string       { return "$" + strconv.Itoa(n) }
func (postgresDialect) RepeatableRead() IsolationLevel { return LevelRepeatableRead }
func (postgresDialect) ReturningID() bool              { return true }

// SQLite transactions are serializable, which already satisfies repeatable
// read; the driver only accepts the default level.
type sqliteDialect struct{}

func (sqliteDialect) Name() string                   { return "sqlite" }
func (sqliteDialect) Placeholder(int) string         { return "?" }
func (sqliteDialect) RepeatableRead() IsolationLevel { return LevelDefault }
func (sqliteDialect) ReturningID() bool              { return false }

var (
	MySQLDialect    Dialect = mysqlDialect{}
	PostgresDialect Dialect = postgresDialect{}
	SQLiteDialect   Dialect = sqliteDialect{}
)

// Args accumulates bind arguments and hands out the matching placeholders.
type Args struct {
	dialect Dialect
	values  []interface{}
}

// NewArgs creates an empty argument list for the dialect.
func NewArgs(dialect Dialect) *Args {
	return &Args{dialect: dialect}
}

// Add appends value and returns its placeholder.
func (a *Args) Add(value interface{}) string {
	a.values = append(a.values, value)
	return a.dialect.Placeholder(len(a.values))
}

// Values returns the accumulated arguments.
func (a *Args) Values() []interface{} {
	return a.values
}
