// Package source supplies name -> value mappings for decoding: the process
// environment, YAML mapping files (handy as test fixtures and local
// overrides), and overlays of several mappings.
package source

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environ returns a snapshot of the current process environment.
func Environ() map[string]string {
	environ := os.Environ()
	vars := make(map[string]string, len(environ))

	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}

		vars[name] = value
	}

	return vars
}

// LoadFile loads a YAML mapping file from the given path.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	vars, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return vars, nil
}

// Parse parses YAML data of the form "name: value" into a mapping. Scalar
// values of any YAML type are accepted and kept in their literal form;
// nested structures are rejected.
func Parse(data []byte) (map[string]string, error) {
	var doc map[string]yaml.Node

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	vars := make(map[string]string, len(doc))

	for name, n := range doc {
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("mapping value for %s is not a scalar", name)
		}

		vars[name] = n.Value
	}

	return vars, nil
}

// Merge overlays mappings left to right; later mappings win. The inputs are
// not modified.
func Merge(mappings ...map[string]string) map[string]string {
	merged := map[string]string{}

	for _, m := range mappings {
		for name, value := range m {
			merged[name] = value
		}
	}

	return merged
}
