package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"

	"b1bridge/config"
)

// DB wraps the SQL Server connection pool for the company database.
type DB struct {
	*sql.DB
}

// Open connects to the company database on SQL Server.
func Open(cfg config.DatabaseConfig, companyDB string) (*DB, error) {
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Server, cfg.Port),
		RawQuery: url.Values{"database": {companyDB}}.Encode(),
	}
	sqlDB, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &DB{sqlDB}, nil
}

// NewDB wraps an existing sql.DB. Used by tests.
func NewDB(sqlDB *sql.DB) *DB {
	return &DB{sqlDB}
}

// Session checks a dedicated connection out of the pool. The caller owns it
// for the duration of one unit of work and must Close it.
func (db *DB) Session(ctx context.Context) (*Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("db session: %w", err)
	}
	return &Conn{conn: conn}, nil
}

// Conn is a single database session. All read operations run on it so that
// one unit of work sees exactly one connection.
type Conn struct {
	conn *sql.Conn
}

// Close returns the connection to the pool.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// selectRows builds and runs a SELECT against one of the allowed tables and
// returns normalized rows.
func (c *Conn) selectRows(ctx context.Context, table string, columns []string, limit int, filters []Filter) ([]Row, error) {
	query, args, err := BuildSelect(table, columns, limit, filters)
	if err != nil {
		return nil, err
	}
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	return normalizeRows(rows)
}

// selectOne runs a single-row lookup. Zero rows yield ErrNotFound instead of
// an out-of-range access at the call site.
func (c *Conn) selectOne(ctx context.Context, table string, columns []string, filters []Filter) (Row, error) {
	rows, err := c.selectRows(ctx, table, columns, 1, filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, table)
	}
	return rows[0], nil
}
