package state

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/testsupport"
)

func path(raw string) formula.Path { return formula.ParsePath(raw) }

func TestDefaults_PersonFormula(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))

	want := map[string]any{
		"person": map[string]any{
			"name":  "Text",
			"email": "",
			"computers": []any{
				map[string]any{"brand": "Dell", "disks": 1},
				map[string]any{"brand": "Dell", "disks": 1},
			},
		},
	}
	if diff := cmp.Diff(want, Defaults(form)); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults_RowPolicy(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula)
	rows, ok := Lookup(Defaults(form), path("person.computers"))
	if !ok {
		t.Fatalf("collection missing from defaults")
	}
	if got := len(rows.([]any)); got != 1 {
		t.Fatalf("expected max(minItems, 1) = 1 row, got %d", got)
	}
}

func TestDefaults_Idempotent(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula)
	if diff := cmp.Diff(Defaults(form), Defaults(form)); diff != "" {
		t.Fatalf("defaults differ between runs:\n%s", diff)
	}
}

func TestStore_EveryLeafHasAValue(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))
	store := New(form)

	leaves := []string{
		"person.name",
		"person.email",
		"person.computers.0.brand",
		"person.computers.0.disks",
		"person.computers.1.brand",
		"person.computers.1.disks",
	}
	for _, leaf := range leaves {
		value, err := store.Get(path(leaf))
		if err != nil {
			t.Fatalf("get %s: %v", leaf, err)
		}
		if value == nil {
			t.Fatalf("%s has no value", leaf)
		}
	}
}

func TestStore_GetFallsBackToDefaults(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))
	store := New(form)

	if err := store.Update(path("person.computers.1"), map[string]any{"brand": "Acer"}); err != nil {
		t.Fatalf("update row: %v", err)
	}
	value, err := store.Get(path("person.computers.1.disks"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != 1 {
		t.Fatalf("expected prototype default, got %v", value)
	}

	if _, err := store.Get(path("person.age")); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
}

func TestStore_GetRejectsMissingRows(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))
	store := New(form)

	for _, p := range []string{
		"person.computers.7.brand",
		"person.computers.2",
		"person.computers.$.brand",
	} {
		if value, err := store.Get(path(p)); !errors.Is(err, ErrPathNotFound) {
			t.Fatalf("%s: expected ErrPathNotFound, got %v (%v)", p, err, value)
		}
	}

	if err := store.Remove(path("person.computers"), 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(path("person.computers.1.brand")); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("removed row: expected ErrPathNotFound, got %v", err)
	}
	if _, err := store.Get(path("person.computers.0.brand")); err != nil {
		t.Fatalf("remaining row: %v", err)
	}
}

func TestStore_UpdateChecksShape(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))
	store := New(form)

	cases := map[string]any{
		"person.computers":         "x",
		"person":                   []any{},
		"person.computers.0":       "Dell",
		"person.computers.0.brand": map[string]any{"nested": true},
	}
	for p, v := range cases {
		if err := store.Update(path(p), v); !errors.Is(err, ErrShapeMismatch) {
			t.Fatalf("%s: expected ErrShapeMismatch, got %v", p, err)
		}
	}

	if n, _ := store.Len(path("person.computers")); n != 2 {
		t.Fatalf("rejected updates changed the row count to %d", n)
	}
	if err := store.Update(path("person.computers"), []any{map[string]any{"brand": "Acer", "disks": 2}}); err != nil {
		t.Fatalf("list update: %v", err)
	}
}

func TestStore_UpdateRoundTrip(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))
	store := New(form)

	cases := map[string]any{
		"person.name":              "Ada",
		"person.email":             "ada@example.com",
		"person.computers.1.brand": "Lenovo",
		"person.computers.0.disks": 4,
	}
	for p, v := range cases {
		if err := store.Update(path(p), v); err != nil {
			t.Fatalf("update %s: %v", p, err)
		}
		got, err := store.Get(path(p))
		if err != nil {
			t.Fatalf("get %s: %v", p, err)
		}
		if got != v {
			t.Fatalf("%s: expected %v, got %v", p, v, got)
		}
	}

	other, _ := store.Get(path("person.computers.0.brand"))
	if other != "Dell" {
		t.Fatalf("row 0 brand changed with row 1: %v", other)
	}
}

func TestStore_UpdateErrors(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))
	store := New(form)

	if err := store.Update(nil, "x"); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("root update: expected ErrPathNotFound, got %v", err)
	}
	if err := store.Update(path("person.nickname"), "x"); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("unknown path: expected ErrPathNotFound, got %v", err)
	}
	if err := store.Update(path("person.computers.5.brand"), "Acer"); !errors.Is(err, ErrMissingParent) {
		t.Fatalf("missing row: expected ErrMissingParent, got %v", err)
	}
	if err := store.Update(path("person.computers.$.brand"), "Acer"); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("placeholder: expected ErrPathNotFound, got %v", err)
	}
}

func TestStore_AddAndRemove(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))
	store := New(form)
	computers := path("person.computers")

	if err := store.Update(path("person.computers.1.brand"), "Acer"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Add(computers, map[string]any{"brand": "ACME", "disks": 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if n, _ := store.Len(computers); n != 3 {
		t.Fatalf("expected 3 rows, got %d", n)
	}

	if err := store.Remove(computers, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ := store.Get(computers)
	want := []any{
		map[string]any{"brand": "Acer", "disks": 1},
		map[string]any{"brand": "ACME", "disks": 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch after remove (-want +got):\n%s", diff)
	}

	if err := store.Remove(computers, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := store.Remove(computers, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := store.Add(path("person.name"), "x"); !errors.Is(err, ErrNotCollection) {
		t.Fatalf("expected ErrNotCollection, got %v", err)
	}
}

func TestStore_ReadsAreCopies(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula)
	store := New(form)

	value, _ := store.Get(path("person"))
	value.(map[string]any)["name"] = "mutated"
	snapshot := store.Snapshot()
	snapshot["person"].(map[string]any)["email"] = "mutated"

	name, _ := store.Get(path("person.name"))
	email, _ := store.Get(path("person.email"))
	if name != "Text" || email != "" {
		t.Fatalf("store changed through a read: name=%v email=%v", name, email)
	}
}

func TestStore_AddCopiesValue(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula)
	store := New(form)

	row := map[string]any{"brand": "ACME", "disks": 1}
	if err := store.Add(path("person.computers"), row); err != nil {
		t.Fatalf("add: %v", err)
	}
	row["brand"] = "Acer"
	got, _ := store.Get(path("person.computers.1.brand"))
	if got != "ACME" {
		t.Fatalf("store aliases the added value: %v", got)
	}
}

func TestStore_Values(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula)
	store := New(form)

	want := map[string]any{
		"person.name":              "Text",
		"person.email":             "",
		"person.computers.0.brand": "Dell",
		"person.computers.0.disks": 1,
	}
	if diff := cmp.Diff(want, store.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestPut(t *testing.T) {
	root := map[string]any{
		"rows": []any{map[string]any{"a": 1}},
	}
	if !Put(root, path("rows.0.a"), 2) {
		t.Fatalf("put into existing row failed")
	}
	if !Put(root, path("rows.1"), map[string]any{"a": 3}) {
		t.Fatalf("append through put failed")
	}
	if Put(root, path("rows.5"), 1) {
		t.Fatalf("expected put past the end to fail")
	}
	if Put(root, path("missing.a"), 1) {
		t.Fatalf("expected put without parent to fail")
	}

	want := map[string]any{
		"rows": []any{map[string]any{"a": 2}, map[string]any{"a": 3}},
	}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}
