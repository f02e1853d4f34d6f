// Package ideas holds the fixed project-idea templates and the filter that
// turns a GenerateRequest into a short list of suggestions.
package ideas

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

var (
	//go:embed catalog.yaml
	catalogYAML []byte

	//go:embed offline.yaml
	offlineYAML []byte
)

// loadedAt stamps every template; templates are created once per process.
var loadedAt = time.Now().UTC()

var (
	fullCatalog    = mustLoad("catalog.yaml", catalogYAML)
	offlineCatalog = mustLoad("offline.yaml", offlineYAML)
)

// universal is appended when filtering leaves too few suggestions.
var universal = domain.ProjectIdea{
	ID:            "universal-starter",
	Title:         "Breadboard Starter Circuit",
	Description:   "Build and test a simple switched LED circuit to get familiar with your parts.",
	Difficulty:    domain.Beginner,
	EstimatedTime: domain.TimeUnder2h,
	Components:    []string{"Breadboard", "LEDs", "Resistors", "Push Buttons", "Jumper Wires"},
	Category:      "Learning",
	Instructions: []string{
		"Place the LED and resistor on the breadboard",
		"Add a push button in series",
		"Power the circuit from 5V and ground",
		"Press the button and check the LED lights up",
	},
	CreatedAt: loadedAt,
}

func mustLoad(name string, data []byte) []domain.ProjectIdea {
	var templates []domain.ProjectIdea
	if err := yaml.Unmarshal(data, &templates); err != nil {
		panic(fmt.Sprintf("❌ FATAL: invalid embedded idea catalog %s: %v", name, err))
	}
	for i := range templates {
		templates[i].CreatedAt = loadedAt
	}
	return templates
}

// Catalog returns a copy of the full template table.
func Catalog() []domain.ProjectIdea {
	return clone(fullCatalog)
}

// OfflineCatalog returns a copy of the reduced table used without the remote store.
func OfflineCatalog() []domain.ProjectIdea {
	return clone(offlineCatalog)
}

// Universal returns the fallback beginner template.
func Universal() domain.ProjectIdea {
	return universal
}

func clone(src []domain.ProjectIdea) []domain.ProjectIdea {
	out := make([]domain.ProjectIdea, len(src))
	copy(out, src)
	return out
}
