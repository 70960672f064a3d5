// Package diff compares two schema trees.
//
// Two passes run over the same input and answer different questions. The
// schema status pass compares tables and columns positionally and yields one
// identical/different flag per schema. The classification pass matches tables
// and columns by name and tags each of them for display. The passes can
// disagree: two identical tables listed in a different order make the schema
// "different" while every table is still tagged "normal".
package diff

import (
	"slices"
	"sort"

	"github.com/sadopc/schemadiff/internal/schema"
)

// Status tags a table or column in a Report.
type Status string

const (
	// Normal means the element matches its counterpart.
	Normal Status = "normal"
	// Missing means the element exists locally but not remotely.
	Missing Status = "missing"
	// Extra means the element exists remotely but not locally.
	Extra Status = "extra"
	// TypeMismatch marks a column found by name whose type differs.
	TypeMismatch Status = "type_mismatch"
	// Different marks a table present on both sides whose column lists are
	// not positionally equal.
	Different Status = "different"
)

// ColumnDiff is one column as seen from one side.
type ColumnDiff struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status Status `json:"status"`
}

// TableDiff is one table as seen from one side.
type TableDiff struct {
	Name    string       `json:"name"`
	Status  Status       `json:"status"`
	Columns []ColumnDiff `json:"columns"`
}

// SchemaDiff holds the classified tables of one schema, in tree order.
type SchemaDiff struct {
	Name   string      `json:"name"`
	Tables []TableDiff `json:"tables"`
}

// Report is the fine-grained classification of both trees. Each side lists
// only the schemas and tables that side actually has.
type Report struct {
	Local  []SchemaDiff `json:"local"`
	Remote []SchemaDiff `json:"remote"`
}

// Result bundles the per-schema flags with the fine-grained report.
type Result struct {
	Statuses map[string]bool
	Report   Report
}

// Compare runs both passes.
func Compare(local, remote schema.Tree) Result {
	return Result{
		Statuses: SchemaStatuses(local, remote),
		Report:   Classify(local, remote),
	}
}

// Identical reports whether every schema on either side is identical.
func (r Result) Identical() bool {
	for _, ok := range r.Statuses {
		if !ok {
			return false
		}
	}
	return true
}

// Different returns the names of schemas flagged as different, sorted.
func (r Result) Different() []string {
	var names []string
	for name, ok := range r.Statuses {
		if !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SchemaNames returns the union of schema names: local order first, then
// remote-only schemas in remote order.
func SchemaNames(local, remote schema.Tree) []string {
	names := local.SchemaNames()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range remote.SchemaNames() {
		if !seen[n] {
			names = append(names, n)
			seen[n] = true
		}
	}
	return names
}

// SchemaStatuses flags each schema in either tree as identical (true) or
// different (false).
func SchemaStatuses(local, remote schema.Tree) map[string]bool {
	names := SchemaNames(local, remote)
	statuses := make(map[string]bool, len(names))
	for _, name := range names {
		l, _ := local.Schema(name)
		r, _ := remote.Schema(name)
		statuses[name] = schemaIdentical(l, r)
	}
	return statuses
}

// schemaIdentical requires equal table counts and, at every position, a table
// with the same name and a positionally equal column list. The first
// violation decides.
func schemaIdentical(local, remote schema.Schema) bool {
	if len(local.Tables) != len(remote.Tables) {
		return false
	}
	for i, lt := range local.Tables {
		rt := remote.Tables[i]
		if lt.Name != rt.Name {
			return false
		}
		if !slices.Equal(lt.Columns, rt.Columns) {
			return false
		}
	}
	return true
}

// Classify tags every table and column of both trees by name matching.
func Classify(local, remote schema.Tree) Report {
	return Report{
		Local:  classifySide(local, remote, Missing),
		Remote: classifySide(remote, local, Extra),
	}
}

// classifySide walks own and tags each element against other. absent is the
// tag for elements other lacks.
func classifySide(own, other schema.Tree, absent Status) []SchemaDiff {
	out := make([]SchemaDiff, 0, len(own))
	for _, s := range own {
		otherSchema, _ := other.Schema(s.Name)
		sd := SchemaDiff{Name: s.Name, Tables: make([]TableDiff, 0, len(s.Tables))}
		for _, t := range s.Tables {
			ot, found := otherSchema.Table(t.Name)
			sd.Tables = append(sd.Tables, classifyTable(t, ot, found, absent))
		}
		out = append(out, sd)
	}
	return out
}

func classifyTable(t, other schema.Table, found bool, absent Status) TableDiff {
	td := TableDiff{Name: t.Name, Status: Normal, Columns: make([]ColumnDiff, 0, len(t.Columns))}
	switch {
	case !found:
		td.Status = absent
	case !slices.Equal(t.Columns, other.Columns):
		td.Status = Different
	}

	for _, c := range t.Columns {
		st := absent
		if found {
			st = classifyColumn(c, other.Columns, absent)
		}
		td.Columns = append(td.Columns, ColumnDiff{Name: c.Name, Type: c.Type, Status: st})
	}
	return td
}

// classifyColumn matches c by name against the first column of that name in
// others.
func classifyColumn(c schema.Column, others []schema.Column, absent Status) Status {
	for _, o := range others {
		if o.Name != c.Name {
			continue
		}
		if o.Type != c.Type {
			return TypeMismatch
		}
		return Normal
	}
	return absent
}
