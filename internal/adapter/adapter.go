package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sadopc/schemadiff/internal/config"
	"github.com/sadopc/schemadiff/internal/schema"
)

// UnknownVersion is reported when a backend's version query fails.
const UnknownVersion = "Unknown"

// Adapter creates database connections for one backend.
type Adapter interface {
	// Name is the registry key, e.g. "postgres".
	Name() string
	// DisplayName is the human-facing backend name, e.g. "PostgreSQL".
	DisplayName() string
	DefaultPort() int
	// FileBased reports whether Endpoint.DBName is a file path rather than a
	// database on a server.
	FileBased() bool
	Connect(ctx context.Context, ep config.Endpoint) (Connection, error)
}

// Connection is an open database used to read its catalog.
type Connection interface {
	// TestConnection reports whether the connection is usable. It never
	// panics and returns false on any failure.
	TestConnection(ctx context.Context) bool

	// ListColumns returns one entry per user table ordered by schema, table
	// and ordinal column position. System schemas are excluded.
	ListColumns(ctx context.Context) ([]schema.CatalogEntry, error)

	// Version returns the server version string, or UnknownVersion.
	Version(ctx context.Context) string

	// Close releases the connection. It is safe to call more than once.
	Close() error

	DatabaseName() string
	AdapterName() string
}

// Unavailable is implemented by backends that are registered but cannot be
// used by this binary. A non-nil Unavailable error rejects the endpoint in
// Resolve, before any connection is opened.
type Unavailable interface {
	Unavailable() error
}

// Registry holds registered adapters by name.
var Registry = map[string]Adapter{}

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	Registry[a.Name()] = a
}

// aliases maps alternative spellings, including the class names used by
// older configuration files, to registry keys.
var aliases = map[string]string{
	"postgresql":        "postgres",
	"pg":                "postgres",
	"postgresqladapter": "postgres",
	"mariadb":           "mysql",
	"mysqladapter":      "mysql",
	"sqlite3":           "sqlite",
	"sqliteadapter":     "sqlite",
	"duckdbadapter":     "duckdb",
	"sqlserver":         "mssql",
	"mssqladapter":      "mssql",
}

// canonicalName lower-cases name and resolves aliases.
func canonicalName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}

// Lookup returns the adapter registered under name or one of its aliases.
// Unknown names fail with a *ConfigError that suggests the closest match.
func Lookup(name string) (Adapter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ConfigError{Reason: "adapter is not set"}
	}
	if a, ok := Registry[canonicalName(name)]; ok {
		return a, nil
	}

	reason := fmt.Sprintf("unknown adapter %q (available: %s)", name, strings.Join(Names(), ", "))
	if s := suggest(name); s != "" {
		reason += fmt.Sprintf("; did you mean %q?", s)
	}
	return nil, &ConfigError{Reason: reason}
}

// Names returns the registered adapter names, sorted.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// suggest returns the best fuzzy match for name among registered adapters and
// aliases, or "".
func suggest(name string) string {
	candidates := Names()
	for alias := range aliases {
		candidates = append(candidates, alias)
	}
	sort.Strings(candidates)

	matches := fuzzy.Find(strings.ToLower(name), candidates)
	if len(matches) == 0 {
		return ""
	}
	return canonicalName(matches[0].Str)
}

// Resolve looks up the adapter for ep and checks the fields it requires. It
// never opens a connection, so configuration mistakes surface before any
// network traffic.
func Resolve(ep config.Endpoint) (Adapter, error) {
	a, err := Lookup(ep.Adapter)
	if err != nil {
		return nil, err
	}
	if u, ok := a.(Unavailable); ok {
		if err := u.Unavailable(); err != nil {
			return nil, err
		}
	}

	var missing []string
	if !a.FileBased() && ep.Host == "" {
		missing = append(missing, "host")
	}
	if ep.DBName == "" {
		missing = append(missing, "dbname")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("%s: missing required field(s): %s", a.Name(), strings.Join(missing, ", "))}
	}
	return a, nil
}

// PortOrDefault returns ep.Port, or the adapter's default port when unset.
func PortOrDefault(a Adapter, ep config.Endpoint) int {
	if ep.Port > 0 {
		return ep.Port
	}
	return a.DefaultPort()
}
