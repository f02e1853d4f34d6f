package redis

import (
	"context"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

// ListIdeas returns the hosted idea templates in catalog order.
func (s *Store) ListIdeas(ctx context.Context) ([]domain.ProjectIdea, error) {
	docs, err := s.Query(ctx, CollectionIdeas, nil, Ascending)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ProjectIdea](docs)
}

// SeedIdeas stores templates under their own ids.
func (s *Store) SeedIdeas(ctx context.Context, templates []domain.ProjectIdea) error {
	now := s.now().UTC()
	docs := make([]Document, 0, len(templates))
	for _, tpl := range templates {
		tpl.CreatedAt = now
		doc, err := toDoc(tpl)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	_, err := s.CreateMany(ctx, CollectionIdeas, docs)
	return err
}
