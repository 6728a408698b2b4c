package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
)

//go:embed navigation.yaml
var defaultNavigation []byte

// LoadNavigationTable reads the card destination table from path, or the
// built-in table when path is empty.
func LoadNavigationTable(path string) (*domain.NavigationTable, error) {
	data := defaultNavigation
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read navigation table: %w", err)
		}
		data = raw
	}
	return ParseNavigationTable(data)
}

// navigationFile is the YAML layout. Bands only hosts anchors shared by
// several destinations.
type navigationFile struct {
	Bands        map[string]map[domain.Band][]string `yaml:"bands"`
	Destinations []domain.Destination                `yaml:"destinations"`
}

// ParseNavigationTable decodes and validates a YAML navigation table.
// Unknown keys are rejected.
func ParseNavigationTable(data []byte) (*domain.NavigationTable, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file navigationFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse navigation table: %w", err)
	}

	table := domain.NavigationTable{Destinations: file.Destinations}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid navigation table: %w", err)
	}
	return &table, nil
}
