package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/schemadiff/internal/report"
	"github.com/sadopc/schemadiff/internal/server"
	"github.com/sadopc/schemadiff/internal/theme"
)

func newCompareCmd(c *cli) *cobra.Command {
	var (
		format        string
		themeName     string
		lang          string
		localDSN      string
		remoteDSN     string
		color         string
		failOnDiff    bool
		onlyDifferent bool
		concurrent    bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the local and remote schemas once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *c.cfg
			if localDSN != "" {
				ep, err := parseEndpoint(localDSN)
				if err != nil {
					return fmt.Errorf("--local: %w", err)
				}
				cfg.Local = ep
			}
			if remoteDSN != "" {
				ep, err := parseEndpoint(remoteDSN)
				if err != nil {
					return fmt.Errorf("--remote: %w", err)
				}
				cfg.Remote = ep
			}
			if cmd.Flags().Changed("concurrent") {
				cfg.Compare.Concurrent = concurrent
			}

			engine, _, cleanup := c.newEngine(&cfg)
			defer cleanup()

			res, err := engine.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var th *theme.Theme
			switch color {
			case "always":
				th = theme.Get(themeName)
			case "never":
				th = theme.Plain()
			default:
				th = report.ThemeFor(out, themeName)
			}

			switch format {
			case "json":
				err = report.JSON(out, server.NewCompareData(res), th)
			case "text":
				err = report.Text(out, res, report.Options{Theme: th, Lang: lang, OnlyDifferent: onlyDifferent})
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
			if err != nil {
				return err
			}

			if failOnDiff && !res.Identical() {
				return errSchemasDiffer
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	f.StringVar(&themeName, "theme", "default", "Color theme (default, light, monokai, plain)")
	f.StringVar(&color, "color", "auto", "Colorize output (auto, always, never)")
	f.StringVar(&lang, "lang", "en", "Report language (en, tr)")
	f.StringVar(&localDSN, "local", "", "Local DSN, overrides the config file")
	f.StringVar(&remoteDSN, "remote", "", "Remote DSN, overrides the config file")
	f.BoolVar(&failOnDiff, "fail-on-diff", false, "Exit with status 2 when any schema differs")
	f.BoolVar(&onlyDifferent, "only-different", false, "Omit identical schemas from the text report")
	f.BoolVar(&concurrent, "concurrent", false, "Read both catalogs in parallel")
	return cmd
}
