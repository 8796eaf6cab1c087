package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formula/pkg/formula"
)

// PersonFormula is the reference formula used across package tests: a text
// field with a default and a bounded collection of computers.
const PersonFormula = `
person:
  $type: group
  name:
    $type: text
    $default: Text
  email:
    $type: email
  computers:
    $type: edit-group
    $minItems: 1
    $maxItems: 4
    $prototype:
      brand:
        $type: select
        $values: [ACME, Acer, Dell, Lenovo]
        $default: Dell
      disks:
        $type: number
        $default: 1
`

// MustBuild parses an inline formula document and builds its form. Testing
// helpers fail the test on error to keep setup concise.
func MustBuild(t *testing.T, source string, options ...formula.Option) *formula.Form {
	t.Helper()

	spec, err := formula.Parse([]byte(source))
	if err != nil {
		t.Fatalf("parse formula: %v", err)
	}
	form, err := formula.Build(spec, options...)
	if err != nil {
		t.Fatalf("build formula: %v", err)
	}
	return form
}

// LoadFormula reads a formula fixture from disk and builds it.
func LoadFormula(t *testing.T, path string, options ...formula.Option) *formula.Form {
	t.Helper()

	form, err := LoadFormulaFromPath(path, options...)
	if err != nil {
		t.Fatalf("load formula: %v", err)
	}
	return form
}

// LoadFormulaFromPath returns a Form without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadFormulaFromPath(path string, options ...formula.Option) (*formula.Form, error) {
	if path == "" {
		return nil, errors.New("testsupport: formula path is required")
	}
	form, err := formula.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path), options...)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load formula: %w", err)
	}
	return form, nil
}

// CollectWarnings returns a builder option that records warnings into dest.
func CollectWarnings(dest *[]formula.Warning) formula.Option {
	return formula.WithWarningHandler(func(w formula.Warning) {
		*dest = append(*dest, w)
	})
}

// Sequence returns a deterministic row identity generator: prefix-1,
// prefix-2 and so on.
func Sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
