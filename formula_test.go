package formula_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formula"
	"github.com/goliatone/go-formula/pkg/testsupport"
)

func TestOpen(t *testing.T) {
	c, err := formula.Open(testsupport.Context(), filepath.Join("testdata", "person.yaml"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	name, err := c.Get("person.name")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if name != "Text" {
		t.Fatalf("unexpected name %v", name)
	}
	if err := c.AddRow(testsupport.Context(), "person.computers"); err != nil {
		t.Fatalf("add row: %v", err)
	}
}

func TestGenerateHTML(t *testing.T) {
	out, err := formula.GenerateHTML(testsupport.Context(), os.DirFS("testdata"), "person.yaml", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `data-action="add-row"`) {
		t.Fatalf("expected add-row action in output:\n%s", out)
	}
}

func TestDefaults(t *testing.T) {
	values, err := formula.Defaults(testsupport.Context(), filepath.Join("testdata", "person.yaml"))
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	person, ok := values["person"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected defaults %+v", values)
	}
	if rows, _ := person["computers"].([]any); len(rows) != 1 {
		t.Fatalf("expected one default row, got %+v", person["computers"])
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	if _, err := fs.Stat(formula.EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("embedded form template missing: %v", err)
	}
}
