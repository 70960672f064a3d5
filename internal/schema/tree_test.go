package schema

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBuilder(t *testing.T) {
	var b Builder
	b.Add("app", "users", Column{Name: "id", Type: "integer"})
	b.Add("app", "users", Column{Name: "email", Type: "varchar(100)"})
	b.Add("app", "orders", Column{Name: "id", Type: "integer"})
	b.Add("audit", "events", Column{Name: "at", Type: "timestamp"})

	got := b.Entries()
	if len(got) != 3 {
		t.Fatalf("Entries() = %d entries, want 3", len(got))
	}
	if got[0].QualifiedName() != "app.users" || len(got[0].Columns) != 2 {
		t.Errorf("entry 0 = %+v, want app.users with 2 columns", got[0])
	}
	if got[2].QualifiedName() != "audit.events" {
		t.Errorf("entry 2 = %q, want audit.events", got[2].QualifiedName())
	}
}

func TestBuilder_Empty(t *testing.T) {
	var b Builder
	got := b.Entries()
	if got == nil || len(got) != 0 {
		t.Errorf("Entries() on empty builder = %#v, want empty non-nil slice", got)
	}
}

func TestGroup(t *testing.T) {
	entries := []CatalogEntry{
		{Schema: "app", Table: "orders", Columns: []Column{{"id", "integer"}, {"total", "numeric(10,2)"}}},
		{Schema: "app", Table: "users", Columns: []Column{{"id", "integer"}, {"email", "varchar(100)"}}},
		{Schema: "public", Table: "t", Columns: []Column{{"x", "text"}}},
	}

	tree := Group(entries)

	if names := tree.SchemaNames(); !reflect.DeepEqual(names, []string{"app", "public"}) {
		t.Fatalf("SchemaNames() = %v, want [app public]", names)
	}
	app, ok := tree.Schema("app")
	if !ok {
		t.Fatal("schema app missing")
	}
	if len(app.Tables) != 2 || app.Tables[0].Name != "orders" || app.Tables[1].Name != "users" {
		t.Errorf("app tables = %+v, want [orders users]", app.Tables)
	}
	users, ok := app.Table("users")
	if !ok {
		t.Fatal("table app.users missing")
	}
	want := []Column{{"id", "integer"}, {"email", "varchar(100)"}}
	if !reflect.DeepEqual(users.Columns, want) {
		t.Errorf("users columns = %v, want %v", users.Columns, want)
	}
	if app.TableIndex("users") != 1 || app.TableIndex("nope") != -1 {
		t.Errorf("TableIndex wrong: users=%d nope=%d", app.TableIndex("users"), app.TableIndex("nope"))
	}
}

func TestGroup_DuplicateKeyAppends(t *testing.T) {
	entries := []CatalogEntry{
		{Schema: "s", Table: "t", Columns: []Column{{"a", "integer"}}},
		{Schema: "s", Table: "t", Columns: []Column{{"b", "text"}}},
	}
	tree := Group(entries)
	tbl, _ := tree[0].Table("t")
	if len(tree[0].Tables) != 1 || len(tbl.Columns) != 2 {
		t.Errorf("duplicate entry: tables=%d columns=%d, want 1 and 2", len(tree[0].Tables), len(tbl.Columns))
	}
}

func TestGroup_DoesNotAliasInput(t *testing.T) {
	entries := []CatalogEntry{{Schema: "s", Table: "t", Columns: []Column{{"a", "integer"}}}}
	tree := Group(entries)
	entries[0].Columns[0].Name = "changed"
	if tree[0].Tables[0].Columns[0].Name != "a" {
		t.Error("Group output shares column storage with its input")
	}
}

func TestTree_MarshalJSON_Empty(t *testing.T) {
	b, err := json.Marshal(Group(nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != "{}" {
		t.Errorf("empty tree = %s, want {}", b)
	}
}

func TestTree_MarshalJSON_PreservesOrder(t *testing.T) {
	tree := Tree{
		{Name: "zeta", Tables: []Table{{Name: "b", Columns: []Column{{"id", "integer"}}}, {Name: "a"}}},
		{Name: "alpha", Tables: nil},
	}
	b, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"zeta":{"b":[{"name":"id","type":"integer"}],"a":[]},"alpha":{}}`
	if string(b) != want {
		t.Errorf("Marshal = %s\nwant      %s", b, want)
	}
}

func TestTree_JSONRoundTrip(t *testing.T) {
	tree := Tree{
		{Name: "b", Tables: []Table{{Name: "y", Columns: []Column{{"id", "integer"}, {"n", "varchar(5)"}}}}},
		{Name: "a", Tables: []Table{{Name: "x", Columns: []Column{{"k", "char(2)"}}}}},
	}
	b, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Tree
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, tree) {
		t.Errorf("round trip = %+v, want %+v", got, tree)
	}
}

func TestTree_UnmarshalJSON_Invalid(t *testing.T) {
	var tree Tree
	for _, in := range []string{`[]`, `{"s":[]}`, `{"s":{"t":{}}}`} {
		if err := json.Unmarshal([]byte(in), &tree); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", in)
		}
	}
}
