package formula

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML, JSON or JSONC formula document into an ordered Spec.
// Comments and trailing commas are accepted in JSON documents.
func Parse(data []byte) (Spec, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSpec)
	}
	if trimmed[0] == '{' {
		trimmed = jsonc.ToJSON(trimmed)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	value, err := newNodeDecoder().decode(&doc)
	if err != nil {
		return nil, err
	}
	spec, ok := value.(Spec)
	if !ok {
		return nil, fmt.Errorf("%w: document root must be a mapping, got %T", ErrInvalidSpec, value)
	}
	return spec, nil
}

// LoadFS reads and parses a formula file from fsys. Only .yaml, .yml, .json
// and .jsonc files are accepted.
func LoadFS(fsys fs.FS, name string) (Spec, error) {
	if fsys == nil {
		return nil, fmt.Errorf("formula: filesystem is required")
	}
	if !isFormulaFile(name) {
		return nil, fmt.Errorf("formula: %s: unsupported file extension", name)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("formula: read %s: %w", name, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("formula: parse %s: %w", name, err)
	}
	return spec, nil
}

// Load reads name from fsys and builds the form it describes.
func Load(fsys fs.FS, name string, options ...Option) (*Form, error) {
	spec, err := LoadFS(fsys, name)
	if err != nil {
		return nil, err
	}
	return Build(spec, options...)
}

func isFormulaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".jsonc":
		return true
	default:
		return false
	}
}

// maxDecodedNodes caps the nodes one Parse may produce once aliases are
// expanded.
const maxDecodedNodes = 100000

// nodeDecoder converts yaml nodes into Spec values. Aliases are expanded in
// place, so it rejects recursive anchors and caps the expanded size.
type nodeDecoder struct {
	expanding map[*yaml.Node]bool
	decoded   int
}

func newNodeDecoder() *nodeDecoder {
	return &nodeDecoder{expanding: make(map[*yaml.Node]bool)}
}

func (d *nodeDecoder) decode(node *yaml.Node) (any, error) {
	d.decoded++
	if d.decoded > maxDecodedNodes {
		return nil, fmt.Errorf("%w: document expands to more than %d nodes", ErrInvalidSpec, maxDecodedNodes)
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return d.decode(node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("%w: line %d: unknown alias %q", ErrInvalidSpec, node.Line, node.Value)
		}
		if d.expanding[node.Alias] {
			return nil, fmt.Errorf("%w: line %d: alias %q refers to itself", ErrInvalidSpec, node.Line, node.Value)
		}
		d.expanding[node.Alias] = true
		defer delete(d.expanding, node.Alias)
		return d.decode(node.Alias)
	case yaml.MappingNode:
		spec := make(Spec, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: mapping keys must be scalars", ErrInvalidSpec, key.Line)
			}
			value, err := d.decode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			spec = append(spec, Entry{Key: key.Value, Value: value})
		}
		return spec, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := d.decode(item)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSpec, node.Line, err)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("%w: line %d: unsupported node", ErrInvalidSpec, node.Line)
	}
}
