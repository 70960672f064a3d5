package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/config"
	"github.com/sadopc/schemadiff/internal/schema"
)

func init() {
	adapter.Register(&postgresAdapter{})
}

// postgresAdapter implements adapter.Adapter for PostgreSQL.
type postgresAdapter struct{}

func (a *postgresAdapter) Name() string        { return "postgres" }
func (a *postgresAdapter) DisplayName() string { return "PostgreSQL" }
func (a *postgresAdapter) DefaultPort() int    { return 5432 }
func (a *postgresAdapter) FileBased() bool     { return false }

func (a *postgresAdapter) Connect(ctx context.Context, ep config.Endpoint) (adapter.Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(connString(ep))
	if err != nil {
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("postgres config: %w", err))
	}
	// One catalog query per comparison; a second connection is never needed.
	poolCfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("postgres connect: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, adapter.NewConnectError(a, ep, fmt.Errorf("postgres ping: %w", err))
	}

	return &pgConn{pool: pool, dbName: ep.DBName}, nil
}

// connString builds a postgres:// URL for ep. The port defaults to 5432 and
// sslmode to "prefer".
func connString(ep config.Endpoint) string {
	port := ep.Port
	if port == 0 {
		port = 5432
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(ep.Host, strconv.Itoa(port)),
		Path:   "/" + ep.DBName,
	}
	if ep.User != "" {
		if ep.Password != "" {
			u.User = url.UserPassword(ep.User, ep.Password)
		} else {
			u.User = url.User(ep.User)
		}
	}
	q := url.Values{}
	sslmode := ep.SSLMode
	if sslmode == "" {
		sslmode = "prefer"
	}
	q.Set("sslmode", sslmode)
	q.Set("application_name", "schemadiff")
	u.RawQuery = q.Encode()
	return u.String()
}

// pgConn implements adapter.Connection for PostgreSQL.
type pgConn struct {
	pool      *pgxpool.Pool
	dbName    string
	closeOnce sync.Once
	closed    atomic.Bool
}

func (c *pgConn) DatabaseName() string { return c.dbName }
func (c *pgConn) AdapterName() string  { return "postgres" }

func (c *pgConn) TestConnection(ctx context.Context) bool {
	if c == nil || c.pool == nil || c.closed.Load() {
		return false
	}
	return c.pool.Ping(ctx) == nil
}

func (c *pgConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.pool != nil {
			c.pool.Close()
		}
	})
	return nil
}

func (c *pgConn) Version(ctx context.Context) string {
	if c.closed.Load() {
		return adapter.UnknownVersion
	}
	var v string
	if err := c.pool.QueryRow(ctx, "SELECT version()").Scan(&v); err != nil || v == "" {
		return adapter.UnknownVersion
	}
	return v
}

// listColumnsSQL reads every base-table column outside the system schemas.
// information_schema exposes domain types (sql_identifier, cardinal_number),
// so everything is cast to plain types for scanning. Names sort by code point
// (COLLATE "C") so the order matches the other backends whatever the
// database locale.
const listColumnsSQL = `
	SELECT c.table_schema::text,
	       c.table_name::text,
	       c.column_name::text,
	       c.data_type::text,
	       c.character_maximum_length::int8,
	       c.numeric_precision::int8,
	       c.numeric_scale::int8
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_schema = c.table_schema
	 AND t.table_name   = c.table_name
	WHERE t.table_type = 'BASE TABLE'
	  AND c.table_schema NOT IN ('pg_catalog', 'information_schema')
	  AND c.table_schema NOT LIKE 'pg\_toast%'
	  AND c.table_schema NOT LIKE 'pg\_temp\_%'
	ORDER BY c.table_schema::text COLLATE "C", c.table_name::text COLLATE "C", c.ordinal_position`

func (c *pgConn) ListColumns(ctx context.Context) ([]schema.CatalogEntry, error) {
	if c.closed.Load() {
		return nil, &adapter.QueryError{Op: "list columns", Err: adapter.ErrNotConnected}
	}

	rows, err := c.pool.Query(ctx, listColumnsSQL)
	if err != nil {
		return nil, &adapter.QueryError{Op: "list columns", Err: err}
	}
	defer rows.Close()

	var b schema.Builder
	for rows.Next() {
		var (
			schemaName, table, column string
			t                         schema.TypeInfo
		)
		if err := rows.Scan(&schemaName, &table, &column, &t.DataType, &t.Length, &t.Precision, &t.Scale); err != nil {
			return nil, &adapter.QueryError{Op: "list columns scan", Err: err}
		}
		b.Add(schemaName, table, schema.Column{Name: column, Type: schema.NormalizeType(t)})
	}
	if err := rows.Err(); err != nil {
		return nil, &adapter.QueryError{Op: "list columns", Err: err}
	}
	return b.Entries(), nil
}
