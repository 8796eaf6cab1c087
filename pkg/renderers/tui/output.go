package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formula/pkg/state"
)

func (s *Session) serialize(values map[string]any) ([]byte, error) {
	return Encode(s.outputFormat, values)
}

// Encode serializes a state tree in the given format.
func Encode(format OutputFormat, values map[string]any) ([]byte, error) {
	switch format {
	case OutputFormatYAML:
		return yaml.Marshal(values)
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	case OutputFormatJSON:
		return json.MarshalIndent(values, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func prettyPrint(values map[string]any) string {
	flat := state.Flatten(values)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%v\n", key, flat[key])
	}
	return b.String()
}
