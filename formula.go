// Package formula is the convenience entry point: it re-exports the core
// types and wraps the orchestrator for callers that want a form from a file
// in one call.
package formula

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formula/pkg/controller"
	pkgformula "github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/orchestrator"
	"github.com/goliatone/go-formula/pkg/render"
)

// Form aliases the built element tree.
type Form = pkgformula.Form

// Spec aliases the ordered formula document.
type Spec = pkgformula.Spec

// Node aliases the renderable tree handed to hosts.
type Node = render.Node

// Request aliases orchestrator.Request for callers configuring a pipeline run.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Open builds a controller for the formula file at path.
func Open(ctx context.Context, path string, options ...orchestrator.Option) (*controller.Controller, error) {
	return orchestrator.New(options...).Controller(ctx, fileRequest(path))
}

// GenerateHTML loads the formula at name from fsys and renders it using the
// named renderer ("html" when empty).
func GenerateHTML(ctx context.Context, fsys fs.FS, name, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		FS:       fsys,
		Path:     name,
		Renderer: rendererName,
	})
}

// Defaults returns the initial state of the formula file at path.
func Defaults(ctx context.Context, path string, options ...orchestrator.Option) (map[string]any, error) {
	return orchestrator.New(options...).Defaults(ctx, fileRequest(path))
}

func fileRequest(path string) orchestrator.Request {
	return orchestrator.Request{
		FS:   os.DirFS(filepath.Dir(path)),
		Path: filepath.Base(path),
	}
}
