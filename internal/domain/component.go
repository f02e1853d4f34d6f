package domain

import (
	"strings"
	"time"
)

// DefaultAvailability is applied to components created without an explicit status.
const DefaultAvailability = "Available"

// Component is a catalog entry for a physical electronic part.
//
// The ID and both timestamps are assigned by whichever store creates it.
type Component struct {
	ID             string            `json:"id"`
	Name           string            `json:"name" yaml:"name" validate:"required"`
	Description    string            `json:"description" yaml:"description" validate:"required"`
	Category       string            `json:"category" yaml:"category" validate:"required"`
	PriceRange     string            `json:"price_range" yaml:"price_range" validate:"required"`
	Availability   string            `json:"availability" yaml:"availability" validate:"required"`
	Specifications map[string]string `json:"specifications,omitempty" yaml:"specifications"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ComponentInput is the payload accepted by create and update.
type ComponentInput struct {
	Name           string            `json:"name" yaml:"name" validate:"required"`
	Description    string            `json:"description" yaml:"description" validate:"required"`
	Category       string            `json:"category" yaml:"category" validate:"required"`
	PriceRange     string            `json:"price_range" yaml:"price_range" validate:"required"`
	Availability   string            `json:"availability,omitempty" yaml:"availability"`
	Specifications map[string]string `json:"specifications,omitempty" yaml:"specifications"`
}

// Normalize trims the text fields and fills in the default availability.
func (in ComponentInput) Normalize() ComponentInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.PriceRange = strings.TrimSpace(in.PriceRange)
	in.Availability = strings.TrimSpace(in.Availability)
	if in.Availability == "" {
		in.Availability = DefaultAvailability
	}
	return in
}

// NewComponent builds a store record from an input. The caller assigns identity.
func NewComponent(id string, in ComponentInput, now time.Time) Component {
	in = in.Normalize()
	return Component{
		ID:             id,
		Name:           in.Name,
		Description:    in.Description,
		Category:       in.Category,
		PriceRange:     in.PriceRange,
		Availability:   in.Availability,
		Specifications: copySpecs(in.Specifications),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Apply overwrites the mutable fields of c with in and bumps UpdatedAt.
// Identity and CreatedAt are preserved.
func (c Component) Apply(in ComponentInput, now time.Time) Component {
	in = in.Normalize()
	c.Name = in.Name
	c.Description = in.Description
	c.Category = in.Category
	c.PriceRange = in.PriceRange
	c.Availability = in.Availability
	if in.Specifications != nil {
		c.Specifications = copySpecs(in.Specifications)
	}
	c.UpdatedAt = now
	return c
}

// ComponentFilter narrows component listings.
// An empty Category or "all" keeps every category.
type ComponentFilter struct {
	Category string
	Search   string
}

// HasCategory reports whether the filter restricts by category.
func (f ComponentFilter) HasCategory() bool {
	return f.Category != "" && !strings.EqualFold(f.Category, "all")
}

// Matches applies the category and free-text search to c.
func (f ComponentFilter) Matches(c Component) bool {
	if f.HasCategory() && c.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Description), q)
}

func copySpecs(specs map[string]string) map[string]string {
	if specs == nil {
		return nil
	}
	out := make(map[string]string, len(specs))
	for k, v := range specs {
		out[k] = v
	}
	return out
}
