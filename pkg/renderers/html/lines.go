package html

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/render"
)

const (
	opOpen  = "open"
	opClose = "close"
	opField = "field"
)

// line is one step of the flattened tree. Templates iterate lines instead of
// recursing, so a single template covers arbitrary nesting.
type line struct {
	Op        string   `json:"op"`
	Kind      string   `json:"kind"`
	Path      string   `json:"path"`
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Label     string   `json:"label,omitempty"`
	HelpHTML  string   `json:"helpHtml,omitempty"`
	InputType string   `json:"inputType,omitempty"`
	Hint      string   `json:"placeholder,omitempty"`
	Value     string   `json:"value,omitempty"`
	Options   []option `json:"options,omitempty"`
	Required  bool     `json:"required,omitempty"`
	Disabled  bool     `json:"disabled,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
	CanAdd    bool     `json:"canAdd,omitempty"`
	CanRemove bool     `json:"canRemove,omitempty"`
	Bounds    string   `json:"bounds,omitempty"`
}

type option struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected,omitempty"`
}

func flatten(root render.Node) []line {
	var lines []line
	appendNode(&lines, root, false, "")
	return lines
}

func appendNode(lines *[]line, node render.Node, removable bool, collectionLabel string) {
	switch {
	case node.IsLeaf():
		*lines = append(*lines, fieldLine(node))
	case node.Kind == formula.KindCollection:
		*lines = append(*lines, line{
			Op:       opOpen,
			Kind:     node.Kind.String(),
			Path:     node.Path,
			ID:       node.ID,
			Label:    node.Label,
			HelpHTML: sanitizeHelp(node.Help),
			Hidden:   !node.Visible,
			Bounds:   bounds(node),
		})
		for _, row := range node.Rows {
			appendNode(lines, row, node.CanRemove, node.Label)
		}
		*lines = append(*lines, line{
			Op:     opClose,
			Kind:   node.Kind.String(),
			Path:   node.Path,
			Label:  node.Label,
			CanAdd: node.CanAdd,
		})
	default:
		label := node.Label
		if node.Kind == formula.KindRow {
			label = rowTitle(collectionLabel, node.Name)
		}
		*lines = append(*lines, line{
			Op:        opOpen,
			Kind:      node.Kind.String(),
			Path:      node.Path,
			ID:        node.ID,
			Label:     label,
			HelpHTML:  sanitizeHelp(node.Help),
			Hidden:    !node.Visible,
			CanRemove: removable,
		})
		for _, child := range node.Children {
			appendNode(lines, child, false, "")
		}
		*lines = append(*lines, line{
			Op:   opClose,
			Kind: node.Kind.String(),
			Path: node.Path,
		})
	}
}

func fieldLine(node render.Node) line {
	l := line{
		Op:        opField,
		Kind:      node.Kind.String(),
		Path:      node.Path,
		ID:        node.ID,
		Name:      node.Path,
		Label:     node.Label,
		HelpHTML:  sanitizeHelp(node.Help),
		InputType: string(node.InputType),
		Hint:      node.Placeholder,
		Value:     formatValue(node.Value),
		Required:  !node.Optional,
		Disabled:  node.Disabled,
		Hidden:    !node.Visible,
	}
	if l.Label == "" {
		l.Label = node.Name
	}
	if l.InputType == "" {
		l.InputType = string(formula.InputText)
	}
	for _, candidate := range node.Options {
		l.Options = append(l.Options, option{Value: candidate, Selected: candidate == l.Value})
	}
	return l
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func bounds(node render.Node) string {
	switch {
	case node.MinItems != nil && node.MaxItems != nil:
		return fmt.Sprintf("%d-%d", *node.MinItems, *node.MaxItems)
	case node.MinItems != nil:
		return fmt.Sprintf("%d+", *node.MinItems)
	case node.MaxItems != nil:
		return fmt.Sprintf("0-%d", *node.MaxItems)
	default:
		return ""
	}
}

func rowTitle(collection, segment string) string {
	idx, err := strconv.Atoi(segment)
	if err != nil {
		return collection
	}
	if collection == "" {
		return "#" + strconv.Itoa(idx+1)
	}
	return collection + " #" + strconv.Itoa(idx+1)
}
