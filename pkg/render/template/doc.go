// Package template defines the template engine seam used by markup
// renderers. Engines live in subpackages.
package template
