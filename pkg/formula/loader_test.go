package formula

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestParse_PreservesDeclarationOrder(t *testing.T) {
	spec, err := Parse([]byte(`
zeta: {}
alpha: {}
mid:
  $type: group
  b: {}
  a: {}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, spec.Keys()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	mid, _ := spec.Get("mid")
	if diff := cmp.Diff([]string{"$type", "b", "a"}, mid.(Spec).Keys()); diff != "" {
		t.Fatalf("nested order mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSONWithComments(t *testing.T) {
	spec, err := Parse([]byte(`{
  // contact block
  "contact": {
    "$type": "group",
    "email": {"$type": "email"}, /* required */
    "age": {"$type": "number", "$default": 30},
  }
}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, err := Build(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	age, err := form.Lookup(ParsePath("contact.age"))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if age.DefaultValue() != 30 {
		t.Fatalf("expected default 30, got %v (%T)", age.DefaultValue(), age.DefaultValue())
	}
	contact, _ := form.Root.Child("contact")
	if contact.Children[0].Name != "email" {
		t.Fatalf("expected email first, got %q", contact.Children[0].Name)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          "   ",
		"list root":      "- a\n- b\n",
		"scalar root":    "hello",
		"broken yaml":    "a: [b\n",
		"non scalar key": "? [a, b]\n: c\n",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(source)); !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
		})
	}
}

func TestLoad_FromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/person.yaml": {Data: []byte(personFormula)},
		"forms/notes.txt":   {Data: []byte("a: {}")},
	}

	form, err := Load(fsys, "forms/person.yaml", WithInitialRows(2))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	computers, err := form.Lookup(ParsePath("person.computers"))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got := form.InitialRows(computers); got != 2 {
		t.Fatalf("expected option to reach the form, got %d rows", got)
	}

	if _, err := LoadFS(fsys, "forms/notes.txt"); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := LoadFS(fsys, "forms/missing.yaml"); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestParse_Aliases(t *testing.T) {
	spec, err := Parse([]byte(`
base: &disk
  $type: number
  $default: 1
extra: *disk
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	extra, ok := spec.Get("extra")
	if !ok {
		t.Fatal("aliased entry missing")
	}
	def, _ := extra.(Spec).Get(KeyDefault)
	if def != 1 {
		t.Fatalf("unexpected aliased default %v", def)
	}
}

func TestParse_RecursiveAlias(t *testing.T) {
	_, err := Parse([]byte("a: &x\n  b: *x\n"))
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestParse_AliasExpansionLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for level := 1; level <= 8; level++ {
		fmt.Fprintf(&b, "l%d: &l%d [", level, level)
		for i := 0; i < 10; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", level-1)
		}
		b.WriteString("]\n")
	}

	_, err := Parse([]byte(b.String()))
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}
