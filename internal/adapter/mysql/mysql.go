package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-sql-driver/mysql"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/config"
	"github.com/sadopc/schemadiff/internal/schema"
)

func init() {
	adapter.Register(&mysqlAdapter{})
}

// ---------------------------------------------------------------------------
// Adapter
// ---------------------------------------------------------------------------

type mysqlAdapter struct{}

func (a *mysqlAdapter) Name() string        { return "mysql" }
func (a *mysqlAdapter) DisplayName() string { return "MySQL" }
func (a *mysqlAdapter) DefaultPort() int    { return 3306 }
func (a *mysqlAdapter) FileBased() bool     { return false }

func (a *mysqlAdapter) Connect(ctx context.Context, ep config.Endpoint) (adapter.Connection, error) {
	connector, err := mysql.NewConnector(driverConfig(ep))
	if err != nil {
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("mysql: connector: %w", err))
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("mysql: ping: %w", err))
	}

	return &mysqlConn{db: db, dbName: ep.DBName}, nil
}

// driverConfig maps an endpoint onto the go-sql-driver configuration.
func driverConfig(ep config.Endpoint) *mysql.Config {
	port := ep.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = ep.User
	cfg.Passwd = ep.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(ep.Host, strconv.Itoa(port))
	cfg.DBName = ep.DBName
	if ep.SSLMode != "" && ep.SSLMode != "disable" {
		cfg.TLSConfig = "preferred"
	}
	return cfg
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

type mysqlConn struct {
	db        *sql.DB
	dbName    string
	closeOnce sync.Once
	closed    atomic.Bool
}

func (c *mysqlConn) AdapterName() string  { return "mysql" }
func (c *mysqlConn) DatabaseName() string { return c.dbName }

func (c *mysqlConn) TestConnection(ctx context.Context) bool {
	if c == nil || c.db == nil || c.closed.Load() {
		return false
	}
	return c.db.PingContext(ctx) == nil
}

func (c *mysqlConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.db != nil {
			_ = c.db.Close()
		}
	})
	return nil
}

func (c *mysqlConn) Version(ctx context.Context) string {
	if c.closed.Load() {
		return adapter.UnknownVersion
	}
	var v string
	if err := c.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&v); err != nil || v == "" {
		return adapter.UnknownVersion
	}
	return v
}

// ---------------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------------

// A MySQL "schema" is a database; the listing is scoped to the configured one.
// Table names sort by code point instead of the case-insensitive default
// collation. information_schema is utf8mb3, hence the CONVERT.
const listColumnsSQL = `
	SELECT
		c.TABLE_SCHEMA,
		c.TABLE_NAME,
		c.COLUMN_NAME,
		c.DATA_TYPE,
		c.CHARACTER_MAXIMUM_LENGTH,
		c.NUMERIC_PRECISION,
		c.NUMERIC_SCALE
	FROM information_schema.columns c
	JOIN information_schema.tables t
		ON  t.TABLE_SCHEMA = c.TABLE_SCHEMA
		AND t.TABLE_NAME   = c.TABLE_NAME
	WHERE t.TABLE_TYPE = 'BASE TABLE'
	  AND c.TABLE_SCHEMA = ?
	  AND c.TABLE_SCHEMA NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
	ORDER BY CONVERT(c.TABLE_SCHEMA USING utf8mb4) COLLATE utf8mb4_bin,
	         CONVERT(c.TABLE_NAME USING utf8mb4) COLLATE utf8mb4_bin,
	         c.ORDINAL_POSITION`

func (c *mysqlConn) ListColumns(ctx context.Context) ([]schema.CatalogEntry, error) {
	if c.closed.Load() {
		return nil, &adapter.QueryError{Op: "list columns", Err: adapter.ErrNotConnected}
	}

	rows, err := c.db.QueryContext(ctx, listColumnsSQL, c.dbName)
	if err != nil {
		return nil, &adapter.QueryError{Op: "list columns", Err: err}
	}
	defer rows.Close()

	var b schema.Builder
	for rows.Next() {
		var (
			schemaName, table, column, dataType string
			length, precision, scale            sql.NullInt64
		)
		if err := rows.Scan(&schemaName, &table, &column, &dataType, &length, &precision, &scale); err != nil {
			return nil, &adapter.QueryError{Op: "list columns scan", Err: err}
		}
		t := schema.TypeInfo{
			DataType:  dataType,
			Length:    nullInt(length),
			Precision: nullInt(precision),
			Scale:     nullInt(scale),
		}
		b.Add(schemaName, table, schema.Column{Name: column, Type: schema.NormalizeType(t)})
	}
	if err := rows.Err(); err != nil {
		return nil, &adapter.QueryError{Op: "list columns", Err: err}
	}
	return b.Entries(), nil
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
