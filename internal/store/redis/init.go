package redis

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/ideas"
	"github.com/MrSnakeDoc/atal/internal/seed"
)

// InitializeDefaultData installs the default components when the
// components collection is empty and the idea templates when the ideas
// collection is empty. Each collection is checked on its own, so a run that
// failed half way is completed by the next one. It reports whether anything
// was written.
func (s *Store) InitializeDefaultData(ctx context.Context) (bool, error) {
	components, err := s.seedComponents(ctx)
	if err != nil {
		return false, err
	}
	templates, err := s.seedIdeaTemplates(ctx)
	if err != nil {
		return components, err
	}
	return components || templates, nil
}

func (s *Store) seedComponents(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx, CollectionComponents)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	inputs, err := seed.DefaultComponents()
	if err != nil {
		return false, err
	}

	now := s.now().UTC()
	docs := make([]Document, 0, len(inputs))
	for _, in := range inputs {
		doc, err := toDoc(domain.NewComponent("", in, now))
		if err != nil {
			return false, err
		}
		delete(doc, "id")
		docs = append(docs, doc)
	}
	if _, err := s.CreateMany(ctx, CollectionComponents, docs); err != nil {
		return false, fmt.Errorf("failed to seed components: %w", err)
	}
	return true, nil
}

func (s *Store) seedIdeaTemplates(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx, CollectionIdeas)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.SeedIdeas(ctx, ideas.Catalog()); err != nil {
		return false, fmt.Errorf("failed to seed idea templates: %w", err)
	}
	return true, nil
}
