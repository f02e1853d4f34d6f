package redis

import (
	"context"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

// ListComponents returns components newest first. Category is filtered in
// the query; Search is applied afterwards on name and description.
func (s *Store) ListComponents(ctx context.Context, filter domain.ComponentFilter) ([]domain.Component, error) {
	var filters []Filter
	if filter.HasCategory() {
		filters = append(filters, Filter{Field: "category", Value: filter.Category})
	}

	docs, err := s.Query(ctx, CollectionComponents, filters, Descending)
	if err != nil {
		return nil, err
	}
	all, err := decodeAll[domain.Component](docs)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, c := range all {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetComponent retrieves a component by ID
func (s *Store) GetComponent(ctx context.Context, id string) (domain.Component, error) {
	doc, err := s.Get(ctx, CollectionComponents, id)
	if err != nil {
		return domain.Component{}, err
	}
	return decode[domain.Component](doc)
}

// CreateComponent stores a new component with a generated id.
func (s *Store) CreateComponent(ctx context.Context, in domain.ComponentInput) (domain.Component, error) {
	doc, err := toDoc(domain.NewComponent("", in, s.now().UTC()))
	if err != nil {
		return domain.Component{}, err
	}
	delete(doc, "id")

	created, err := s.Create(ctx, CollectionComponents, doc)
	if err != nil {
		return domain.Component{}, err
	}
	return decode[domain.Component](created)
}

// UpdateComponent overwrites the mutable fields of a component.
func (s *Store) UpdateComponent(ctx context.Context, id string, in domain.ComponentInput) (domain.Component, error) {
	in = in.Normalize()
	partial := Document{
		"name":         in.Name,
		"description":  in.Description,
		"category":     in.Category,
		"price_range":  in.PriceRange,
		"availability": in.Availability,
	}
	if in.Specifications != nil {
		partial["specifications"] = in.Specifications
	}

	doc, err := s.Update(ctx, CollectionComponents, id, partial)
	if err != nil {
		return domain.Component{}, err
	}
	return decode[domain.Component](doc)
}

// DeleteComponent removes a component.
func (s *Store) DeleteComponent(ctx context.Context, id string) error {
	return s.Delete(ctx, CollectionComponents, id)
}
