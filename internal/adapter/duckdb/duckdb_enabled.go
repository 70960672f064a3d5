//go:build duckdb

package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/config"
	"github.com/sadopc/schemadiff/internal/schema"
)

func init() {
	adapter.Register(&duckdbAdapter{})
}

// ---------------------------------------------------------------------------
// Adapter
// ---------------------------------------------------------------------------

type duckdbAdapter struct{}

func (a *duckdbAdapter) Name() string        { return "duckdb" }
func (a *duckdbAdapter) DisplayName() string { return "DuckDB" }
func (a *duckdbAdapter) DefaultPort() int    { return 0 }
func (a *duckdbAdapter) FileBased() bool     { return true }

func (a *duckdbAdapter) Connect(ctx context.Context, ep config.Endpoint) (adapter.Connection, error) {
	path := strings.TrimPrefix(ep.DBName, "duckdb://")

	dsn := path
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, adapter.NewConnectError(a, ep, fmt.Errorf("duckdb: open: %w", err))
		}
		dsn = path + "?access_mode=read_only"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("duckdb: open: %w", err))
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("duckdb: ping: %w", err))
	}

	return &duckdbConn{db: db, dbName: filepath.Base(path)}, nil
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

type duckdbConn struct {
	db        *sql.DB
	dbName    string
	closeOnce sync.Once
	closed    atomic.Bool
}

func (c *duckdbConn) DatabaseName() string { return c.dbName }
func (c *duckdbConn) AdapterName() string  { return "duckdb" }

func (c *duckdbConn) TestConnection(ctx context.Context) bool {
	if c == nil || c.db == nil || c.closed.Load() {
		return false
	}
	return c.db.PingContext(ctx) == nil
}

func (c *duckdbConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.db != nil {
			_ = c.db.Close()
		}
	})
	return nil
}

func (c *duckdbConn) Version(ctx context.Context) string {
	if c.closed.Load() {
		return adapter.UnknownVersion
	}
	var v string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&v); err != nil || v == "" {
		return adapter.UnknownVersion
	}
	return v
}

// ---------------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------------

// DuckDB reports parameterised types inline ("DECIMAL(10,2)"), so data_type
// goes through the declared-type parser rather than the length columns.
const listColumnsSQL = `
	SELECT c.table_schema, c.table_name, c.column_name, c.data_type
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_catalog = c.table_catalog
	 AND t.table_schema  = c.table_schema
	 AND t.table_name    = c.table_name
	WHERE t.table_type = 'BASE TABLE'
	  AND c.table_catalog = current_database()
	  AND c.table_schema NOT IN ('information_schema', 'pg_catalog')
	ORDER BY c.table_schema, c.table_name, c.ordinal_position`

func (c *duckdbConn) ListColumns(ctx context.Context) ([]schema.CatalogEntry, error) {
	if c.closed.Load() {
		return nil, &adapter.QueryError{Op: "list columns", Err: adapter.ErrNotConnected}
	}

	rows, err := c.db.QueryContext(ctx, listColumnsSQL)
	if err != nil {
		return nil, &adapter.QueryError{Op: "list columns", Err: err}
	}
	defer rows.Close()

	var b schema.Builder
	for rows.Next() {
		var schemaName, table, column, dataType string
		if err := rows.Scan(&schemaName, &table, &column, &dataType); err != nil {
			return nil, &adapter.QueryError{Op: "list columns scan", Err: err}
		}
		b.Add(schemaName, table, schema.Column{
			Name: column,
			Type: schema.NormalizeType(schema.ParseDeclaredType(dataType)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &adapter.QueryError{Op: "list columns", Err: err}
	}
	return b.Entries(), nil
}
