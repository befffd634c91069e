package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// WriteSetting sets the value at keyPath in the settings file at path,
// creating the file and intermediate sections as needed. The format is
// chosen by extension. YAML comments and key order are preserved.
func WriteSetting(path string, keyPath []string, value any) error {
	if len(keyPath) == 0 {
		return fmt.Errorf("%w: empty key path", ErrInvalidValue)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading settings: %w", err)
	}

	var out []byte
	switch formatOf(path) {
	case "yaml":
		out, err = setYAML(data, keyPath, value)
	case "toml":
		out, err = setTOML(data, keyPath, value)
	case "json":
		out, err = setJSON(data, keyPath, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return &ParseError{Path: path, Message: "updating " + strings.Join(keyPath, "."), Err: err}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// ReadSetting returns the raw value at keyPath in a JSON settings document.
func ReadSetting(data []byte, keyPath []string) (any, bool) {
	res := gjson.GetBytes(data, jsonPath(keyPath))
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}

func setYAML(data []byte, keyPath []string, value any) ([]byte, error) {
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}

	node := doc.Content[0]
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document root is not a mapping")
	}

	var valueNode yaml.Node
	if err := valueNode.Encode(value); err != nil {
		return nil, err
	}

	for i, key := range keyPath {
		last := i == len(keyPath)-1

		var child *yaml.Node
		for j := 0; j < len(node.Content)-1; j += 2 {
			if node.Content[j].Value == key {
				child = node.Content[j+1]
				if last || child.Kind != yaml.MappingNode {
					if last {
						node.Content[j+1] = &valueNode
					} else {
						child = &yaml.Node{Kind: yaml.MappingNode}
						node.Content[j+1] = child
					}
				}
				break
			}
		}

		if child == nil {
			if last {
				child = &valueNode
			} else {
				child = &yaml.Node{Kind: yaml.MappingNode}
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				child,
			)
		}
		node = child
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	_ = enc.Close()
	return buf.Bytes(), nil
}

func setTOML(data []byte, keyPath []string, value any) ([]byte, error) {
	m := make(map[string]any)
	if len(bytes.TrimSpace(data)) > 0 {
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	}
	setNested(m, keyPath, value)
	return toml.Marshal(m)
}

func setJSON(data []byte, keyPath []string, value any) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	out, err := sjson.SetBytes(data, jsonPath(keyPath), value)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(out), nil
}

func setNested(m map[string]any, keyPath []string, value any) {
	for _, key := range keyPath[:len(keyPath)-1] {
		child, ok := m[key].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[key] = child
		}
		m = child
	}
	m[keyPath[len(keyPath)-1]] = value
}

// jsonPath joins keys into a gjson/sjson path, escaping path syntax.
func jsonPath(keyPath []string) string {
	escaped := make([]string, len(keyPath))
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	for i, k := range keyPath {
		escaped[i] = r.Replace(k)
	}
	return strings.Join(escaped, ".")
}
