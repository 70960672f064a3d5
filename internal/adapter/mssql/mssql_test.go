package mssql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/config"
)

func TestMSSQLAdapter_Registration(t *testing.T) {
	for _, name := range []string{"mssql", "sqlserver", "MSSQLAdapter"} {
		a, err := adapter.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) error: %v", name, err)
		}
		if a.Name() != "mssql" || a.DefaultPort() != 1433 {
			t.Errorf("Lookup(%q) = %s:%d", name, a.Name(), a.DefaultPort())
		}
	}
}

func TestMSSQLAdapter_ConnectNotImplemented(t *testing.T) {
	conn, err := (&mssqlAdapter{}).Connect(context.Background(), config.Endpoint{Host: "h", DBName: "d", Password: "pw"})
	if conn != nil {
		t.Error("Connect() returned a connection")
	}
	if !errors.Is(err, adapter.ErrConfiguration) {
		t.Fatalf("Connect() error = %v, want a configuration error", err)
	}
	if !strings.Contains(err.Error(), "not implemented") {
		t.Errorf("Connect() error = %q", err)
	}
}

func TestMSSQLAdapter_RejectedByResolve(t *testing.T) {
	_, err := adapter.Resolve(config.Endpoint{Adapter: "sqlserver", Host: "h", DBName: "d"})
	if !errors.Is(err, adapter.ErrConfiguration) {
		t.Fatalf("Resolve() error = %v, want a configuration error", err)
	}
	if !strings.Contains(err.Error(), "mssql: backend not implemented") {
		t.Errorf("Resolve() error = %q", err)
	}
}
