package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadYAMLFile reads a flat YAML mapping whose keys mirror the env var names
// in lower case (soffice_bin, convert_timeout, ...). An empty path is a no-op.
func loadYAMLFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	out := make(map[string]string, len(raw))
	for key, val := range raw {
		envKey := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(key), "-", "_"))
		switch v := val.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			out[envKey] = strings.Join(parts, ",")
		case map[string]any:
			return nil, fmt.Errorf("parse config file: key %q must be a scalar or list", key)
		default:
			out[envKey] = fmt.Sprint(v)
		}
	}
	return out, nil
}
