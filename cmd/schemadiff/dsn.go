package main

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/sadopc/schemadiff/internal/audit"
	"github.com/sadopc/schemadiff/internal/config"
)

// parseEndpoint turns a connection string into an Endpoint. It accepts
// URL-style DSNs (postgres://, mysql://, sqlserver://), go-sql-driver DSNs
// (user:pass@tcp(host:port)/db), sqlite:// and duckdb:// paths, and bare file
// paths recognised by extension.
func parseEndpoint(dsn string) (config.Endpoint, error) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return parseURL("postgres", dsn)
	case strings.HasPrefix(lower, "mysql://") || strings.HasPrefix(lower, "mariadb://"):
		return parseURL("mysql", dsn)
	case strings.HasPrefix(lower, "sqlserver://") || strings.HasPrefix(lower, "mssql://"):
		return parseURL("mssql", dsn)
	case strings.HasPrefix(lower, "sqlite://"):
		return fileEndpoint("sqlite", dsn[len("sqlite://"):])
	case strings.HasPrefix(lower, "file:"):
		return fileEndpoint("sqlite", dsn[len("file:"):])
	case strings.HasPrefix(lower, "duckdb://"):
		return fileEndpoint("duckdb", dsn[len("duckdb://"):])
	case strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3"):
		return fileEndpoint("sqlite", dsn)
	case strings.HasSuffix(lower, ".duckdb"):
		return fileEndpoint("duckdb", dsn)
	case strings.Contains(lower, "@tcp("):
		return parseMySQLDSN(dsn)
	}
	// The input is not echoed: an unrecognised DSN may still hold a password.
	return config.Endpoint{}, errors.New("cannot detect adapter; use a postgres://, mysql://, sqlserver://, sqlite:// or duckdb:// DSN or a database file path")
}

func fileEndpoint(adapterName, path string) (config.Endpoint, error) {
	if path == "" {
		return config.Endpoint{}, fmt.Errorf("%s: empty file path", adapterName)
	}
	return config.Endpoint{Adapter: adapterName, DBName: path}, nil
}

func parseURL(adapterName, dsn string) (config.Endpoint, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		// url errors quote the input, which may hold a password.
		return config.Endpoint{}, fmt.Errorf("invalid %s DSN %q", adapterName, audit.SanitizeDSN(dsn))
	}
	ep := config.Endpoint{
		Adapter: adapterName,
		Host:    u.Hostname(),
		DBName:  strings.TrimPrefix(u.Path, "/"),
		SSLMode: u.Query().Get("sslmode"),
	}
	if ep.DBName == "" {
		ep.DBName = u.Query().Get("database")
	}
	if u.User != nil {
		ep.User = u.User.Username()
		ep.Password, _ = u.User.Password()
	}
	if p := u.Port(); p != "" {
		if ep.Port, err = strconv.Atoi(p); err != nil {
			return config.Endpoint{}, fmt.Errorf("invalid port %q", p)
		}
	}
	return ep, nil
}

func parseMySQLDSN(dsn string) (config.Endpoint, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return config.Endpoint{}, fmt.Errorf("invalid mysql DSN %q", audit.SanitizeDSN(dsn))
	}
	ep := config.Endpoint{
		Adapter:  "mysql",
		Host:     mc.Addr,
		DBName:   mc.DBName,
		User:     mc.User,
		Password: mc.Passwd,
	}
	if host, port, err := net.SplitHostPort(mc.Addr); err == nil {
		ep.Host = host
		if ep.Port, err = strconv.Atoi(port); err != nil {
			return config.Endpoint{}, fmt.Errorf("invalid port %q", port)
		}
	}
	if mc.TLSConfig != "" && mc.TLSConfig != "false" {
		ep.SSLMode = "require"
	}
	return ep, nil
}
