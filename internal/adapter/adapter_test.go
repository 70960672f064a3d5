package adapter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sadopc/schemadiff/internal/config"
)

// mockAdapter is a minimal adapter for testing the registry.
type mockAdapter struct {
	name     string
	port     int
	fileBase bool
}

func (m *mockAdapter) Name() string        { return m.name }
func (m *mockAdapter) DisplayName() string { return strings.ToUpper(m.name) }
func (m *mockAdapter) DefaultPort() int    { return m.port }
func (m *mockAdapter) FileBased() bool     { return m.fileBase }
func (m *mockAdapter) Connect(_ context.Context, _ config.Endpoint) (Connection, error) {
	return nil, errors.New("mock: not implemented")
}

// unavailableAdapter is registered but refuses every endpoint.
type unavailableAdapter struct{ mockAdapter }

func (u *unavailableAdapter) Unavailable() error { return NotImplemented(u.name) }

// withRegistry swaps in a registry for the duration of a test.
func withRegistry(t *testing.T, adapters ...Adapter) {
	t.Helper()
	orig := Registry
	Registry = map[string]Adapter{}
	for _, a := range adapters {
		Register(a)
	}
	t.Cleanup(func() { Registry = orig })
}

func TestRegister(t *testing.T) {
	withRegistry(t)

	Register(&mockAdapter{name: "testdb", port: 9999})

	got, ok := Registry["testdb"]
	if !ok {
		t.Fatal("expected adapter 'testdb' to be registered")
	}
	if got.DefaultPort() != 9999 {
		t.Errorf("DefaultPort() = %d, want %d", got.DefaultPort(), 9999)
	}
}

func TestNames_Sorted(t *testing.T) {
	withRegistry(t,
		&mockAdapter{name: "sqlite"},
		&mockAdapter{name: "mysql"},
		&mockAdapter{name: "postgres"},
	)
	got := strings.Join(Names(), ",")
	if got != "mysql,postgres,sqlite" {
		t.Errorf("Names() = %s, want mysql,postgres,sqlite", got)
	}
}

func TestLookup(t *testing.T) {
	withRegistry(t,
		&mockAdapter{name: "postgres", port: 5432},
		&mockAdapter{name: "mysql", port: 3306},
		&mockAdapter{name: "sqlite", fileBase: true},
		&mockAdapter{name: "mssql", port: 1433},
	)

	tests := []struct {
		in   string
		want string
	}{
		{"postgres", "postgres"},
		{"Postgres", "postgres"},
		{"postgresql", "postgres"},
		{"PostgreSQLAdapter", "postgres"},
		{"pg", "postgres"},
		{" mysql ", "mysql"},
		{"MySQLAdapter", "mysql"},
		{"mariadb", "mysql"},
		{"sqlite3", "sqlite"},
		{"MSSQLAdapter", "mssql"},
		{"sqlserver", "mssql"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := Lookup(tt.in)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.in, err)
			}
			if a.Name() != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.in, a.Name(), tt.want)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	withRegistry(t, &mockAdapter{name: "postgres"}, &mockAdapter{name: "mysql"})

	_, err := Lookup("oracle")
	if err == nil {
		t.Fatal("Lookup(oracle) should fail")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("error %v should be a configuration error", err)
	}
	if !strings.Contains(err.Error(), "available: mysql, postgres") {
		t.Errorf("error %q should list available adapters", err)
	}
}

func TestLookup_Suggestion(t *testing.T) {
	withRegistry(t, &mockAdapter{name: "postgres"}, &mockAdapter{name: "mysql"})

	tests := []struct {
		in   string
		want string
	}{
		{"postgre", `did you mean "postgres"?`},
		{"pgsql", `did you mean "postgres"?`},
		{"mysq", `did you mean "mysql"?`},
	}
	for _, tt := range tests {
		_, err := Lookup(tt.in)
		if err == nil {
			t.Fatalf("Lookup(%q) should fail", tt.in)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Lookup(%q) error = %q, want it to contain %q", tt.in, err, tt.want)
		}
	}
}

func TestLookup_Empty(t *testing.T) {
	withRegistry(t, &mockAdapter{name: "postgres"})
	_, err := Lookup("  ")
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Lookup(blank) error = %v, want configuration error", err)
	}
}

func TestResolve(t *testing.T) {
	withRegistry(t,
		&mockAdapter{name: "postgres", port: 5432},
		&mockAdapter{name: "sqlite", fileBase: true},
		&unavailableAdapter{mockAdapter{name: "mssql", port: 1433}},
	)

	tests := []struct {
		name    string
		ep      config.Endpoint
		wantErr string
	}{
		{"complete network endpoint", config.Endpoint{Adapter: "postgres", Host: "db", DBName: "app"}, ""},
		{"missing host", config.Endpoint{Adapter: "postgres", DBName: "app"}, "host"},
		{"missing dbname", config.Endpoint{Adapter: "postgres", Host: "db"}, "dbname"},
		{"missing both", config.Endpoint{Adapter: "postgres"}, "host, dbname"},
		{"file based needs no host", config.Endpoint{Adapter: "sqlite", DBName: "/tmp/x.db"}, ""},
		{"file based needs dbname", config.Endpoint{Adapter: "sqlite"}, "dbname"},
		{"unknown adapter", config.Endpoint{Adapter: "nope", Host: "h", DBName: "d"}, "unknown adapter"},
		{"unavailable backend", config.Endpoint{Adapter: "mssql", Host: "h", DBName: "d"}, "not implemented"},
		{"unavailable backend via alias", config.Endpoint{Adapter: "sqlserver", Host: "h", DBName: "d"}, "not implemented"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.ep)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Resolve() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Resolve() succeeded, want error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Resolve() error %v is not a configuration error", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Resolve() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestPortOrDefault(t *testing.T) {
	a := &mockAdapter{name: "postgres", port: 5432}
	if got := PortOrDefault(a, config.Endpoint{}); got != 5432 {
		t.Errorf("PortOrDefault(unset) = %d, want 5432", got)
	}
	if got := PortOrDefault(a, config.Endpoint{Port: 6543}); got != 6543 {
		t.Errorf("PortOrDefault(6543) = %d, want 6543", got)
	}
}
