//go:build !duckdb

package duckdb

import (
	"context"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/config"
)

// errDisabled is a configuration error: the binary cannot serve this backend
// no matter what the endpoint says.
var errDisabled = &adapter.ConfigError{Reason: "DuckDB support not compiled in. Rebuild with -tags duckdb"}

func init() {
	adapter.Register(&disabledAdapter{})
}

type disabledAdapter struct{}

func (d *disabledAdapter) Name() string        { return "duckdb" }
func (d *disabledAdapter) DisplayName() string { return "DuckDB" }
func (d *disabledAdapter) DefaultPort() int    { return 0 }
func (d *disabledAdapter) FileBased() bool     { return true }

func (d *disabledAdapter) Unavailable() error { return errDisabled }

func (d *disabledAdapter) Connect(_ context.Context, _ config.Endpoint) (adapter.Connection, error) {
	return nil, errDisabled
}
