package redis

import (
	"context"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

// ListProjects returns projects most recently saved first, restricted to
// userID when it is not empty.
func (s *Store) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	var filters []Filter
	if userID != "" {
		filters = append(filters, Filter{Field: "user_id", Value: userID})
	}

	docs, err := s.Query(ctx, CollectionProjects, filters, Descending)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Project](docs)
}

// GetProject retrieves a project by ID
func (s *Store) GetProject(ctx context.Context, id string) (domain.Project, error) {
	doc, err := s.Get(ctx, CollectionProjects, id)
	if err != nil {
		return domain.Project{}, err
	}
	return decode[domain.Project](doc)
}

// SaveProject stores p under a new id. DateSaved is assigned here.
func (s *Store) SaveProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	now := s.now().UTC()
	p = p.Normalize()
	p.ID = ""
	p.DateSaved = now

	doc, err := toDoc(p)
	if err != nil {
		return domain.Project{}, err
	}
	delete(doc, "id")

	created, err := s.Create(ctx, CollectionProjects, doc)
	if err != nil {
		return domain.Project{}, err
	}
	return decode[domain.Project](created)
}

// UpdateProject merges patch into a stored project.
func (s *Store) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (domain.Project, error) {
	partial, err := toDoc(patch)
	if err != nil {
		return domain.Project{}, err
	}

	doc, err := s.Update(ctx, CollectionProjects, id, partial)
	if err != nil {
		return domain.Project{}, err
	}
	return decode[domain.Project](doc)
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.Delete(ctx, CollectionProjects, id)
}
