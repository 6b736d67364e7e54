package store

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DumpYAML renders every namespace of backend as a YAML document with
// namespaces and keys in sorted order.
func DumpYAML(backend Backend) (string, error) {
	dump, err := backend.Dump()
	if err != nil {
		return "", fmt.Errorf("failed to read store: %w", err)
	}
	if len(dump) == 0 {
		return "{}\n", nil
	}

	// yaml.v3 sorts map keys when encoding
	out, err := yaml.Marshal(dump)
	if err != nil {
		return "", fmt.Errorf("failed to encode store: %w", err)
	}
	return string(out), nil
}
