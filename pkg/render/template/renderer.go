package template

import (
	"io"
)

// TemplateRenderer executes named templates or inline template content
// against data. Rendered output is returned and, when writers are given,
// copied to each of them.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
