// Package theme holds the lipgloss styles used by terminal reports. Every
// rendered element references a style in a Theme so that the whole look can
// be swapped with one flag.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds one lipgloss.Style per report element.
type Theme struct {
	Name string

	// Headings
	Title lipgloss.Style
	Label lipgloss.Style
	Muted lipgloss.Style

	// Schema status marks
	Identical lipgloss.Style
	Different lipgloss.Style

	// Tree
	Schema     lipgloss.Style
	Table      lipgloss.Style
	Column     lipgloss.Style
	ColumnType lipgloss.Style

	// Diff tags
	Missing      lipgloss.Style
	Extra        lipgloss.Style
	TypeMismatch lipgloss.Style
	Changed      lipgloss.Style

	// JSON highlighting
	JSONKey     lipgloss.Style
	JSONString  lipgloss.Style
	JSONNumber  lipgloss.Style
	JSONLiteral lipgloss.Style
	JSONPunct   lipgloss.Style
}

// palette lists the colours a theme is derived from.
type palette struct {
	accent, schema, table, text, muted string
	good, bad, warn, changed, str, num string
}

func build(name string, p palette) *Theme {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return &Theme{
		Name: name,

		Title: fg(p.accent).Bold(true),
		Label: fg(p.accent),
		Muted: fg(p.muted),

		Identical: fg(p.good).Bold(true),
		Different: fg(p.bad).Bold(true),

		Schema:     fg(p.schema).Bold(true),
		Table:      fg(p.table),
		Column:     fg(p.text),
		ColumnType: fg(p.muted).Italic(true),

		Missing:      fg(p.bad),
		Extra:        fg(p.good),
		TypeMismatch: fg(p.warn),
		Changed:      fg(p.changed),

		JSONKey:     fg(p.schema),
		JSONString:  fg(p.str),
		JSONNumber:  fg(p.num),
		JSONLiteral: fg(p.accent),
		JSONPunct:   fg(p.muted),
	}
}

// ---------------------------------------------------------------------------
// Theme definitions
// ---------------------------------------------------------------------------

// newDefaultTheme builds the default dark theme.
func newDefaultTheme() *Theme {
	return build("default", palette{
		accent:  "#569CD6",
		schema:  "#9CDCFE",
		table:   "#4EC9B0",
		text:    "#D4D4D4",
		muted:   "#808080",
		good:    "#6A9955",
		bad:     "#F44747",
		warn:    "#DCDCAA",
		changed: "#C586C0",
		str:     "#CE9178",
		num:     "#B5CEA8",
	})
}

// newLightTheme builds a theme for light terminal backgrounds.
func newLightTheme() *Theme {
	return build("light", palette{
		accent:  "#0000FF",
		schema:  "#001080",
		table:   "#267F99",
		text:    "#000000",
		muted:   "#6A6A6A",
		good:    "#008000",
		bad:     "#CD3131",
		warn:    "#795E26",
		changed: "#AF00DB",
		str:     "#A31515",
		num:     "#098658",
	})
}

// newMonokaiTheme builds a Monokai-inspired dark theme.
func newMonokaiTheme() *Theme {
	return build("monokai", palette{
		accent:  "#66D9EF",
		schema:  "#A6E22E",
		table:   "#66D9EF",
		text:    "#F8F8F2",
		muted:   "#75715E",
		good:    "#A6E22E",
		bad:     "#F92672",
		warn:    "#E6DB74",
		changed: "#AE81FF",
		str:     "#E6DB74",
		num:     "#AE81FF",
	})
}

// newPlainTheme renders everything unstyled, for pipes and files.
func newPlainTheme() *Theme {
	s := lipgloss.NewStyle()
	return &Theme{
		Name:  "plain",
		Title: s, Label: s, Muted: s,
		Identical: s, Different: s,
		Schema: s, Table: s, Column: s, ColumnType: s,
		Missing: s, Extra: s, TypeMismatch: s, Changed: s,
		JSONKey: s, JSONString: s, JSONNumber: s, JSONLiteral: s, JSONPunct: s,
	}
}

// ---------------------------------------------------------------------------
// Registry and accessors
// ---------------------------------------------------------------------------

// Themes maps theme names to their definitions.
var Themes = map[string]*Theme{
	"default": newDefaultTheme(),
	"light":   newLightTheme(),
	"monokai": newMonokaiTheme(),
	"plain":   newPlainTheme(),
}

// Default returns the default dark theme.
func Default() *Theme {
	return Themes["default"]
}

// Plain returns the unstyled theme.
func Plain() *Theme {
	return Themes["plain"]
}

// IsPlain reports whether th applies no styling.
func (th *Theme) IsPlain() bool {
	return th == nil || th.Name == "plain"
}

// Get returns the theme identified by name, falling back to Default.
func Get(name string) *Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return Default()
}

// Names returns the registered theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(Themes))
	for n := range Themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
