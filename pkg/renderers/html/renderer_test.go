package html

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formula/pkg/controller"
	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/render"
	"github.com/goliatone/go-formula/pkg/testsupport"
)

func intPtr(v int) *int { return &v }

func renderNode(t *testing.T, root render.Node, options ...Option) string {
	t.Helper()

	renderer, err := New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(testsupport.Context(), root)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func TestRenderer_Metadata(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "html" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderer_PersonForm(t *testing.T) {
	form := testsupport.MustBuild(t, testsupport.PersonFormula, formula.WithInitialRows(2))
	c, err := controller.New(form)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	html := renderNode(t, c.RenderRoot())

	assertContains(t, html,
		`<form class="formula"`,
		`<fieldset class="formula-group" data-path="person">`,
		`<legend>Person</legend>`,
		`name="person.name" value="Text"`,
		`type="email"`,
		`data-bounds="1-4"`,
		`<option value="Dell" selected>Dell</option>`,
		`<option value="Acer">Acer</option>`,
		`name="person.computers.1.disks" value="1"`,
		`data-action="add-row" data-path="person.computers">Add Computers</button>`,
		`data-action="remove-row" data-path="person.computers.0"`,
	)
}

func TestRenderer_RowActionsFollowBounds(t *testing.T) {
	root := render.Node{
		Kind:    formula.KindGroup,
		Visible: true,
		Children: []render.Node{{
			Kind:     formula.KindCollection,
			Name:     "servers",
			Path:     "servers",
			Label:    "Servers",
			Visible:  true,
			MinItems: intPtr(1),
			MaxItems: intPtr(1),
			Rows: []render.Node{{
				Kind:    formula.KindRow,
				Name:    "0",
				Path:    "servers.0",
				ID:      "row-1",
				Visible: true,
				Children: []render.Node{{
					Kind:    formula.KindInput,
					Name:    "host",
					Path:    "servers.0.host",
					Label:   "Host",
					Value:   "db1",
					Visible: true,
				}},
			}},
		}},
	}

	html := renderNode(t, root)
	assertContains(t, html, `<legend>Servers #1</legend>`, `id="row-1"`, `value="db1"`, `type="text"`)
	if strings.Contains(html, `data-action="add-row"`) || strings.Contains(html, `data-action="remove-row"`) {
		t.Fatalf("full collection at its minimum should offer no row actions\n%s", html)
	}
}

func TestRenderer_HiddenAndDisabled(t *testing.T) {
	root := render.Node{
		Kind:    formula.KindGroup,
		Visible: true,
		Children: []render.Node{
			{Kind: formula.KindInput, Name: "id", Path: "id", Label: "ID", Value: "fixed", Disabled: true, Visible: true},
			{Kind: formula.KindInput, Name: "extra", Path: "extra", Label: "Extra", Optional: true, Visible: false},
		},
	}

	html := renderNode(t, root)
	assertContains(t, html,
		`value="fixed" required disabled>`,
		`<div class="formula-field" data-path="extra" hidden>`,
		`name="extra" value="">`,
	)
}

func TestRenderer_EscapesValuesAndSanitizesHelp(t *testing.T) {
	root := render.Node{
		Kind:    formula.KindGroup,
		Visible: true,
		Children: []render.Node{{
			Kind:    formula.KindInput,
			Name:    "bio",
			Path:    "bio",
			Label:   "Bio",
			Help:    `See <a href="https://example.com">docs</a><script>alert(1)</script>`,
			Value:   `"><script>`,
			Visible: true,
		}},
	}

	html := renderNode(t, root)
	if strings.Contains(html, "<script>") {
		t.Fatalf("script markup leaked into output\n%s", html)
	}
	assertContains(t, html, `value="&quot;&gt;&lt;script&gt;"`, `<a href="https://example.com"`, `>docs</a>`)
}

func TestRenderer_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tmpl": {Data: []byte(`{% for l in lines %}{{ l.op }}:{{ l.path }};{% endfor %}`)},
	}
	root := render.Node{
		Kind:    formula.KindGroup,
		Visible: true,
		Children: []render.Node{
			{Kind: formula.KindInput, Name: "a", Path: "a", Visible: true},
		},
	}

	html := renderNode(t, root, WithTemplatesFS(files))
	if html != "open:;field:a;close:;" {
		t.Fatalf("unexpected custom output %q", html)
	}
}
