package redis

import (
	"context"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	doc, err := s.Get(ctx, CollectionUsers, id)
	if err != nil {
		return domain.User{}, err
	}
	return decode[domain.User](doc)
}

// CreateUser stores u. The caller's id is kept; an empty id gets a UUID.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	doc, err := toDoc(u)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.Create(ctx, CollectionUsers, doc)
	if err != nil {
		return domain.User{}, err
	}
	return decode[domain.User](created)
}

// UpdateUser merges patch into a stored user.
func (s *Store) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	partial, err := toDoc(patch)
	if err != nil {
		return domain.User{}, err
	}

	doc, err := s.Update(ctx, CollectionUsers, id, partial)
	if err != nil {
		return domain.User{}, err
	}
	return decode[domain.User](doc)
}
