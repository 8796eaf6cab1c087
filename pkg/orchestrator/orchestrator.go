package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formula/pkg/collection"
	"github.com/goliatone/go-formula/pkg/controller"
	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/render"
	"github.com/goliatone/go-formula/pkg/renderers/html"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithFormulaOptions forwards builder options (labeler, row policy, ...) to
// every form the orchestrator builds.
func WithFormulaOptions(options ...formula.Option) Option {
	return func(o *Orchestrator) {
		o.formulaOptions = append(o.formulaOptions, options...)
	}
}

// WithCollectionOptions forwards options to each controller's row manager.
func WithCollectionOptions(options ...collection.Option) Option {
	return func(o *Orchestrator) {
		o.collectionOptions = append(o.collectionOptions, options...)
	}
}

// WithLogger sets the logger receiving builder warnings and controller
// diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates the full pipeline from formula document to
// rendered output. It applies sensible defaults (html renderer, embedded
// templates) while remaining open to dependency injection.
type Orchestrator struct {
	registry          *render.Registry
	defaultRenderer   string
	formulaOptions    []formula.Option
	collectionOptions []collection.Option
	logger            zerolog.Logger
	initialiseErr     error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to build and render a form.
type Request struct {
	// FS and Path locate the formula document. Ignored when Spec is set.
	FS   fs.FS
	Path string

	// Spec allows callers to bypass the loader when they already hold a
	// parsed document.
	Spec formula.Spec

	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string

	// Values prefills fields by dotted path before rendering. Each value goes
	// through the same coercion as a user edit.
	Values map[string]any
}

// Controller builds the form for req and returns a controller holding its
// defaults plus any prefilled values.
func (o *Orchestrator) Controller(ctx context.Context, req Request, options ...controller.Option) (*controller.Controller, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	spec, err := o.resolveSpec(req)
	if err != nil {
		return nil, err
	}

	formOptions := append([]formula.Option{formula.WithWarningHandler(o.logWarning)}, o.formulaOptions...)
	form, err := formula.Build(spec, formOptions...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build form: %w", err)
	}

	controllerOptions := append([]controller.Option{
		controller.WithLogger(o.logger),
		controller.WithCollectionOptions(o.collectionOptions...),
	}, options...)
	c, err := controller.New(form, controllerOptions...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: controller: %w", err)
	}

	if err := prefill(ctx, c, req.Values); err != nil {
		return nil, err
	}
	return c, nil
}

// Generate executes the loader → builder → controller → renderer sequence
// and returns the rendered bytes (HTML for the default renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	c, err := o.Controller(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, c.RenderRoot())
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Defaults returns the nested initial state of the form req describes.
func (o *Orchestrator) Defaults(ctx context.Context, req Request) (map[string]any, error) {
	c, err := o.Controller(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.Values(), nil
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func (o *Orchestrator) resolveSpec(req Request) (formula.Spec, error) {
	if req.Spec != nil {
		return req.Spec, nil
	}
	if req.FS == nil || req.Path == "" {
		return nil, errors.New("orchestrator: source or spec is required")
	}
	spec, err := formula.LoadFS(req.FS, req.Path)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load formula: %w", err)
	}
	return spec, nil
}

func (o *Orchestrator) logWarning(w formula.Warning) {
	o.logger.Warn().Str("path", w.Path.String()).Msg(w.Message)
}

func prefill(ctx context.Context, c *controller.Controller, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	paths := make([]string, 0, len(values))
	for path := range values {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := c.Update(ctx, path, values[path]); err != nil {
			return fmt.Errorf("orchestrator: prefill %s: %w", path, err)
		}
	}
	return nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
