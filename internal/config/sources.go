package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mr30303/taxiDriver/internal/registry"
)

// sourcesFile is the on-disk layout of a registry override
type sourcesFile struct {
	Sources []registry.SourceSchema `yaml:"sources"`
}

// LoadRegistry returns the built-in registry when path is empty, otherwise the
// sources listed in the YAML file at path.
func LoadRegistry(path string) (registry.Registry, error) {
	if path == "" {
		return registry.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return registry.Registry{}, fmt.Errorf("failed to read sources file: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes a YAML source list. Unknown keys are rejected so a
// misspelled column list does not silently drop a field.
func ParseRegistry(data []byte) (registry.Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file sourcesFile
	if err := dec.Decode(&file); err != nil {
		return registry.Registry{}, fmt.Errorf("failed to parse sources file: %w", err)
	}
	if len(file.Sources) == 0 {
		return registry.Registry{}, fmt.Errorf("%w: sources file lists no sources", registry.ErrInvalidSchema)
	}
	return registry.New(file.Sources...)
}
