package render

import (
	"context"
	"encoding/json"
)

// Renderer converts a renderable tree into bytes (HTML, JSON, ...). Hosts
// that draw widgets directly consume Node values instead.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, root Node) ([]byte, error)
}

// Surface is the host-side drawing target. The controller calls Refresh
// once per accepted user action with the view to redraw.
type Surface interface {
	Refresh(ctx context.Context, view View) error
}

// SurfaceFunc adapts a function into a Surface.
type SurfaceFunc func(ctx context.Context, view View) error

// Refresh calls fn.
func (fn SurfaceFunc) Refresh(ctx context.Context, view View) error {
	return fn(ctx, view)
}

// JSONRenderer emits the tree as indented JSON.
type JSONRenderer struct{}

// Name reports the renderer identifier.
func (JSONRenderer) Name() string { return "json" }

// ContentType reports the serialization format.
func (JSONRenderer) ContentType() string { return "application/json" }

// Render marshals root.
func (JSONRenderer) Render(ctx context.Context, root Node) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(root, "", "  ")
}
