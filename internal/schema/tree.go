package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Table is a named, ordered column list inside a Schema.
type Table struct {
	Name    string
	Columns []Column
}

// Schema is a named, ordered table list inside a Tree.
type Schema struct {
	Name   string
	Tables []Table
}

// Table returns the table with the given name.
func (s Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TableIndex returns the position of the named table, or -1.
func (s Schema) TableIndex(name string) int {
	for i, t := range s.Tables {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// Tree is the nested schema -> table -> columns view of one database. Order is
// preserved at every level: schemas and tables in first-seen order, columns
// in catalog ordinal order.
type Tree []Schema

// Schema returns the schema with the given name.
func (t Tree) Schema(name string) (Schema, bool) {
	for _, s := range t {
		if s.Name == name {
			return s, true
		}
	}
	return Schema{}, false
}

// SchemaNames returns the schema names in tree order.
func (t Tree) SchemaNames() []string {
	names := make([]string, len(t))
	for i, s := range t {
		names[i] = s.Name
	}
	return names
}

// Group nests flat catalog entries by schema, then table. Input order is kept;
// a schema.table seen twice gets the later columns appended so no entry is
// lost.
func Group(entries []CatalogEntry) Tree {
	tree := Tree{}
	schemaIdx := make(map[string]int)
	tableIdx := make(map[string]int)

	for _, e := range entries {
		si, ok := schemaIdx[e.Schema]
		if !ok {
			si = len(tree)
			schemaIdx[e.Schema] = si
			tree = append(tree, Schema{Name: e.Schema})
		}

		s := &tree[si]
		key := e.QualifiedName()
		if ti, ok := tableIdx[key]; ok {
			s.Tables[ti].Columns = append(s.Tables[ti].Columns, e.Columns...)
			continue
		}
		tableIdx[key] = len(s.Tables)
		cols := make([]Column, len(e.Columns))
		copy(cols, e.Columns)
		s.Tables = append(s.Tables, Table{Name: e.Table, Columns: cols})
	}
	return tree
}

// MarshalJSON writes the tree as an ordered object:
// {"schema": {"table": [{"name": ..., "type": ...}]}}.
func (t Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, s.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, tbl := range s.Tables {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, tbl.Name); err != nil {
				return nil, err
			}
			cols := tbl.Columns
			if cols == nil {
				cols = []Column{}
			}
			b, err := json.Marshal(cols)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the form written by MarshalJSON, keeping key order.
func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	tree := Tree{}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return err
		}
		s := Schema{Name: name}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			tname, err := readKey(dec)
			if err != nil {
				return err
			}
			var cols []Column
			if err := dec.Decode(&cols); err != nil {
				return fmt.Errorf("table %s.%s: %w", name, tname, err)
			}
			s.Tables = append(s.Tables, Table{Name: tname, Columns: cols})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
		tree = append(tree, s)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	*t = tree
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	b, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("schema tree: expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("schema tree: expected %q, got %v", want, tok)
	}
	return nil
}
