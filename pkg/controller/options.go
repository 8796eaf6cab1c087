package controller

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formula/pkg/collection"
	"github.com/goliatone/go-formula/pkg/render"
)

// Option configures a Controller.
type Option func(*Controller)

// WithSurface sets the host surface that receives redraw requests. Without
// one, actions still mutate state and hosts poll View.
func WithSurface(surface render.Surface) Option {
	return func(c *Controller) {
		c.surface = surface
	}
}

// WithLogger routes controller diagnostics to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithCollectionOptions forwards options to the collection manager.
func WithCollectionOptions(options ...collection.Option) Option {
	return func(c *Controller) {
		c.collectionOpts = append(c.collectionOpts, options...)
	}
}
