package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/config"
	"github.com/sadopc/schemadiff/internal/schema"

	_ "modernc.org/sqlite"
)

func init() {
	adapter.Register(&sqliteAdapter{})
}

// SQLite has a single attached schema for user tables.
const mainSchema = "main"

// sqliteAdapter implements adapter.Adapter for SQLite database files.
type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string        { return "sqlite" }
func (a *sqliteAdapter) DisplayName() string { return "SQLite" }
func (a *sqliteAdapter) DefaultPort() int    { return 0 }
func (a *sqliteAdapter) FileBased() bool     { return true }

// Connect opens the file named by ep.DBName. A missing file is an error;
// opening it would silently create an empty database.
func (a *sqliteAdapter) Connect(ctx context.Context, ep config.Endpoint) (adapter.Connection, error) {
	path := normalizeDSN(ep.DBName)
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, adapter.NewConnectError(a, ep, fmt.Errorf("sqlite open: %w", err))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("sqlite open: %w", err))
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("sqlite ping: %w", err))
	}

	// Introspection never writes.
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("sqlite query_only: %w", err))
	}

	dbName := path
	if path != ":memory:" {
		dbName = filepath.Base(path)
	}
	return &sqliteConn{db: db, dbName: dbName}, nil
}

// normalizeDSN strips common SQLite URI prefixes.
func normalizeDSN(dsn string) string {
	if strings.HasPrefix(dsn, "sqlite://") {
		return strings.TrimPrefix(dsn, "sqlite://")
	}
	if strings.HasPrefix(dsn, "file:") {
		return strings.TrimPrefix(dsn, "file:")
	}
	return dsn
}

// sqliteConn implements adapter.Connection.
type sqliteConn struct {
	db        *sql.DB
	dbName    string
	closeOnce sync.Once
	closed    atomic.Bool
}

func (c *sqliteConn) AdapterName() string  { return "sqlite" }
func (c *sqliteConn) DatabaseName() string { return c.dbName }

func (c *sqliteConn) TestConnection(ctx context.Context) bool {
	if c == nil || c.db == nil || c.closed.Load() {
		return false
	}
	return c.db.PingContext(ctx) == nil
}

func (c *sqliteConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.db != nil {
			_ = c.db.Close()
		}
	})
	return nil
}

func (c *sqliteConn) Version(ctx context.Context) string {
	if c.closed.Load() {
		return adapter.UnknownVersion
	}
	var v string
	if err := c.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&v); err != nil || v == "" {
		return adapter.UnknownVersion
	}
	return v
}

// ListColumns reads every user table in sqlite_master and its columns via
// pragma_table_info. Declared types such as VARCHAR(50) are parsed before
// normalization.
func (c *sqliteConn) ListColumns(ctx context.Context) ([]schema.CatalogEntry, error) {
	if c.closed.Load() {
		return nil, &adapter.QueryError{Op: "list columns", Err: adapter.ErrNotConnected}
	}

	tables, err := c.tables(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]schema.CatalogEntry, 0, len(tables))
	for _, table := range tables {
		cols, err := c.columns(ctx, table)
		if err != nil {
			return nil, err
		}
		entries = append(entries, schema.CatalogEntry{Schema: mainSchema, Table: table, Columns: cols})
	}
	return entries, nil
}

func (c *sqliteConn) tables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, &adapter.QueryError{Op: "list tables", Err: err}
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &adapter.QueryError{Op: "list tables scan", Err: err}
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &adapter.QueryError{Op: "list tables", Err: err}
	}
	return tables, nil
}

// columns returns the table's columns in cid order. The table name is bound
// as a parameter, so any legal identifier works unquoted.
func (c *sqliteConn) columns(ctx context.Context, table string) ([]schema.Column, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, &adapter.QueryError{Op: "table_info " + table, Err: err}
	}
	defer rows.Close()

	cols := []schema.Column{}
	for rows.Next() {
		var name, declared string
		if err := rows.Scan(&name, &declared); err != nil {
			return nil, &adapter.QueryError{Op: "table_info scan", Err: err}
		}
		cols = append(cols, schema.Column{
			Name: name,
			Type: schema.NormalizeType(schema.ParseDeclaredType(declared)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &adapter.QueryError{Op: "table_info " + table, Err: err}
	}
	return cols, nil
}
