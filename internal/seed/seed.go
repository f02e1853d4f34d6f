// Package seed holds the default component catalog installed on first run.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

//go:embed components.yaml
var componentsYAML []byte

// DefaultComponents returns a fresh copy of the default catalog.
func DefaultComponents() ([]domain.ComponentInput, error) {
	var components []domain.ComponentInput
	if err := yaml.Unmarshal(componentsYAML, &components); err != nil {
		return nil, fmt.Errorf("failed to parse default components: %w", err)
	}

	for i, c := range components {
		components[i] = c.Normalize()
		if err := domain.Validate(components[i]); err != nil {
			return nil, fmt.Errorf("default component %d (%s): %w", i, c.Name, err)
		}
	}

	return components, nil
}
