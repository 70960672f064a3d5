package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/schemadiff/internal/history"
	"github.com/sadopc/schemadiff/internal/report"
	"github.com/sadopc/schemadiff/internal/theme"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit    int
		filter   string
		format   string
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past comparison runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return errors.New("--limit must be a positive integer")
			}
			store, err := history.Open(c.cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if clearAll {
				if err := store.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "History cleared.")
				return nil
			}

			var runs []history.Run
			if filter != "" {
				runs, err = store.Search(ctx, likePattern(filter), limit)
			} else {
				runs, err = store.Recent(ctx, limit)
			}
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return report.JSON(out, runs, report.ThemeFor(out, "default"))
			case "text":
				return writeRuns(out, runs, report.ThemeFor(out, "default"))
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
		},
	}

	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	f.StringVar(&filter, "filter", "", "Only show runs whose local or remote endpoint contains this text")
	f.StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	f.BoolVar(&clearAll, "clear", false, "Delete all recorded runs")
	return cmd
}

// likePattern wraps s in % wildcards unless it already has one.
func likePattern(s string) string {
	if strings.Contains(s, "%") {
		return s
	}
	return "%" + s + "%"
}

func writeRuns(w io.Writer, runs []history.Run, th *theme.Theme) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "ok"
		if r.Failed() {
			status = r.Error
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.RanAt.Local().Format("2006-01-02 15:04:05"),
			r.Local,
			r.Remote,
			strconv.Itoa(r.IdenticalSchemas),
			strconv.Itoa(r.DifferentSchemas),
			strconv.FormatInt(r.DurationMS, 10),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(th.Muted).
		Headers("ID", "RAN AT", "LOCAL", "REMOTE", "IDENTICAL", "DIFFERENT", "MS", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return th.Title
			case row < 0 || row >= len(runs):
				return th.Column
			case col == 7 && runs[row].Failed():
				return th.Different
			case col == 5 && runs[row].DifferentSchemas > 0:
				return th.TypeMismatch
			default:
				return th.Column
			}
		})

	_, err := fmt.Fprintln(w, t.String())
	return err
}
