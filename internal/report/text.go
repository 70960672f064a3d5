// Package report renders comparison results for the terminal.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/sadopc/schemadiff/internal/compare"
	"github.com/sadopc/schemadiff/internal/diff"
	"github.com/sadopc/schemadiff/internal/i18n"
	"github.com/sadopc/schemadiff/internal/theme"
)

// Options controls text rendering.
type Options struct {
	Theme *theme.Theme
	// Lang selects the label language; see i18n.Languages.
	Lang string
	// OnlyDifferent skips identical schemas entirely.
	OnlyDifferent bool
}

// IsTerminal reports whether w is a terminal. Anything that is not an
// *os.File is treated as a pipe.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ThemeFor returns the named theme for w, or the plain theme when w is not a
// terminal.
func ThemeFor(w io.Writer, name string) *theme.Theme {
	if !IsTerminal(w) {
		return theme.Plain()
	}
	return theme.Get(name)
}

// Text writes a human-readable report of res to w.
func Text(w io.Writer, res *compare.Result, opts Options) error {
	th := opts.Theme
	if th == nil {
		th = theme.Plain()
	}
	t := func(key string) string { return i18n.T(opts.Lang, key) }

	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, th.Title.Render(t("app_title")))
	writeEndpoint(bw, th, t("local_database"), res.LocalInfo, res.LocalVersion)
	writeEndpoint(bw, th, t("remote_database"), res.RemoteInfo, res.RemoteVersion)

	local := index(res.Report.Local)
	remote := index(res.Report.Remote)

	for _, name := range diff.SchemaNames(res.Local, res.Remote) {
		identical := res.Statuses[name]
		if identical && opts.OnlyDifferent {
			continue
		}
		fmt.Fprintln(bw)
		if identical {
			fmt.Fprintf(bw, "%s %s  %s\n",
				th.Identical.Render("✓"), th.Schema.Render(name), th.Muted.Render(t("schema_identical")))
			continue
		}
		fmt.Fprintf(bw, "%s %s  %s\n",
			th.Different.Render("✗"), th.Schema.Render(name), th.Muted.Render(t("schema_different")))

		writeSide(bw, th, t, t("local_database"), local[name])
		writeSide(bw, th, t, t("remote_database"), remote[name])
	}

	identical, different := res.Counts()
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, th.Muted.Render(fmt.Sprintf(t("summary"), identical, different)+
		fmt.Sprintf(" (%dms)", res.Duration.Milliseconds())))

	return bw.Flush()
}

func writeEndpoint(w io.Writer, th *theme.Theme, label string, ep compare.EndpointInfo, version string) {
	addr := ep.Host
	if ep.Port > 0 {
		addr = fmt.Sprintf("%s:%d", ep.Host, ep.Port)
	}
	fmt.Fprintf(w, "  %s: %s %s %s\n",
		th.Label.Render(label), ep.Adapter, addr, th.Muted.Render("("+version+")"))
}

func index(side []diff.SchemaDiff) map[string]*diff.SchemaDiff {
	m := make(map[string]*diff.SchemaDiff, len(side))
	for i := range side {
		m[side[i].Name] = &side[i]
	}
	return m
}

// writeSide prints one side of a differing schema.
func writeSide(w io.Writer, th *theme.Theme, t func(string) string, label string, sd *diff.SchemaDiff) {
	fmt.Fprintf(w, "  %s\n", th.Label.Render(label))
	if sd == nil {
		fmt.Fprintf(w, "    %s\n", th.Missing.Render(t("schema_missing")))
		return
	}
	for _, td := range sd.Tables {
		line := "    " + th.Table.Render(td.Name)
		if tag := statusTag(th, t, td.Status); tag != "" {
			line += "  " + tag
		}
		fmt.Fprintln(w, line)

		// Padding is measured in terminal cells, not bytes.
		width := 0
		for _, c := range td.Columns {
			width = max(width, lipgloss.Width(c.Name))
		}
		for _, c := range td.Columns {
			pad := strings.Repeat(" ", width-lipgloss.Width(c.Name))
			line := "      " + th.Column.Render(c.Name) + pad + "  " + th.ColumnType.Render(c.Type)
			if tag := statusTag(th, t, c.Status); tag != "" {
				line += "  " + tag
			}
			fmt.Fprintln(w, line)
		}
	}
}

// statusTag returns the styled label for st, or "" for diff.Normal.
func statusTag(th *theme.Theme, t func(string) string, st diff.Status) string {
	switch st {
	case diff.Missing:
		return th.Missing.Render("[" + t("missing_in_remote") + "]")
	case diff.Extra:
		return th.Extra.Render("[" + t("extra_in_remote") + "]")
	case diff.TypeMismatch:
		return th.TypeMismatch.Render("[" + t("type_mismatch") + "]")
	case diff.Different:
		return th.Changed.Render("[" + t("different") + "]")
	default:
		return ""
	}
}
