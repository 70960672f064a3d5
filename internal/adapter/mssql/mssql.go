// Package mssql declares the SQL Server backend. It is registered so that
// configurations naming it fail with a clear configuration error instead of
// "unknown adapter".
package mssql

import (
	"context"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/config"
)

func init() {
	adapter.Register(&mssqlAdapter{})
}

type mssqlAdapter struct{}

func (a *mssqlAdapter) Name() string        { return "mssql" }
func (a *mssqlAdapter) DisplayName() string { return "SQL Server" }
func (a *mssqlAdapter) DefaultPort() int    { return 1433 }
func (a *mssqlAdapter) FileBased() bool     { return false }

// Unavailable rejects every mssql endpoint during resolution.
func (a *mssqlAdapter) Unavailable() error { return adapter.NotImplemented(a.Name()) }

func (a *mssqlAdapter) Connect(_ context.Context, _ config.Endpoint) (adapter.Connection, error) {
	return nil, adapter.NotImplemented(a.Name())
}
