package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/audit"
	"github.com/sadopc/schemadiff/internal/compare"
	"github.com/sadopc/schemadiff/internal/config"
	"github.com/sadopc/schemadiff/internal/history"

	// Register database adapters
	_ "github.com/sadopc/schemadiff/internal/adapter/duckdb"
	_ "github.com/sadopc/schemadiff/internal/adapter/mssql"
	_ "github.com/sadopc/schemadiff/internal/adapter/mysql"
	_ "github.com/sadopc/schemadiff/internal/adapter/postgres"
	_ "github.com/sadopc/schemadiff/internal/adapter/sqlite"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errSchemasDiffer makes the process exit with status 2.
var errSchemasDiffer = errors.New("schemas differ")

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if errors.Is(err, errSchemasDiffer) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "schemadiff",
		Short: "Compare database schemas",
		Long: `schemadiff compares the schemas of two databases (local and remote)
and reports which schemas are identical and which tables and columns differ.
PostgreSQL, MySQL, SQLite and DuckDB are supported.

Examples:
  schemadiff compare                              # Endpoints from the config file
  schemadiff compare --remote postgres://u@db/app # Override one side
  schemadiff serve --listen :8080                 # HTTP API
  schemadiff history --filter billing`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file path")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newCompareCmd(c),
		newServeCmd(c),
		newHistoryCmd(c),
		newAdaptersCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and builds the logger.
func (c *cli) load(stderr io.Writer) error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.Load(c.configPath)
	} else {
		c.cfg, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.logLevel != "" {
		c.cfg.Server.LogLevel = c.logLevel
	}

	opts := &slog.HandlerOptions{Level: c.cfg.SlogLevel()}
	if c.cfg.IsProduction() {
		c.logger = slog.New(slog.NewJSONHandler(stderr, opts))
	} else {
		c.logger = slog.New(slog.NewTextHandler(stderr, opts))
	}
	return nil
}

// openHistory opens the history store when enabled. Failures are logged and
// leave history off.
func (c *cli) openHistory(cfg *config.Config) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		c.logger.Warn("could not open history", "error", err)
		return nil
	}
	return hist
}

// openAudit opens the audit log when enabled. Failures are logged and leave
// auditing off.
func (c *cli) openAudit(cfg *config.Config) *audit.Logger {
	if !cfg.Audit.Enabled {
		return nil
	}
	path := cfg.Audit.Path
	if path == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			c.logger.Warn("could not resolve audit log path", "error", err)
			return nil
		}
		path = filepath.Join(dir, "audit.jsonl")
	}
	l, err := audit.New(path, cfg.Audit.MaxSizeMB)
	if err != nil {
		c.logger.Warn("could not open audit log", "error", err)
		return nil
	}
	return l
}

// newEngine builds an Engine wired to history and audit. The returned func
// releases both.
func (c *cli) newEngine(cfg *config.Config) (*compare.Engine, *history.Store, func()) {
	hist := c.openHistory(cfg)
	auditLog := c.openAudit(cfg)

	var opts []compare.Option
	if hist != nil {
		opts = append(opts, compare.WithHistory(hist))
	}
	if auditLog != nil {
		opts = append(opts, compare.WithAudit(auditLog))
	}
	engine := compare.New(*cfg, c.logger, opts...)

	return engine, hist, func() {
		if hist != nil {
			_ = hist.Close()
		}
		if auditLog != nil {
			_ = auditLog.Close()
		}
	}
}

func newAdaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List supported database adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range adapter.Names() {
				a := adapter.Registry[name]
				switch {
				case a.FileBased():
					fmt.Fprintf(out, "  %-8s %s (file)\n", name, a.DisplayName())
				default:
					fmt.Fprintf(out, "  %-8s %s (port %d)\n", name, a.DisplayName(), a.DefaultPort())
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schemadiff %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Fprintln(out, "\nSupported adapters:")
			for _, name := range adapter.Names() {
				fmt.Fprintf(out, "  - %s\n", name)
			}
		},
	}
}
