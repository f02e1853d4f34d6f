package local

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/seed"
)

// Blob keys of the three collections.
const (
	ComponentsKey = "atal_components"
	ProjectsKey   = "atal_projects"
	UsersKey      = "atal_users"
)

// Service is the local store. Every operation loads a whole collection,
// changes it and writes it back; mu serializes those cycles.
type Service struct {
	blobs Blobs

	mu       sync.Mutex
	now      func() time.Time
	newID    func() string
	defaults func() ([]domain.ComponentInput, error)
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithDefaults replaces the catalog installed into an empty store.
func WithDefaults(defaults func() ([]domain.ComponentInput, error)) Option {
	return func(s *Service) { s.defaults = defaults }
}

// NewService creates a local store on top of blobs.
func NewService(blobs Blobs, opts ...Option) *Service {
	s := &Service{
		blobs:    blobs,
		now:      time.Now,
		newID:    uuid.NewString,
		defaults: seed.DefaultComponents,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─────────────────────────────────────────────────────────────────
// Components
// ─────────────────────────────────────────────────────────────────

// ListComponents returns the components matching filter. An empty store is
// seeded with the default catalog first.
func (s *Service) ListComponents(ctx context.Context, filter domain.ComponentFilter) ([]domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.componentsLocked(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Component, 0, len(all))
	for _, c := range all {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) GetComponent(ctx context.Context, id string) (domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.componentsLocked(ctx)
	if err != nil {
		return domain.Component{}, err
	}
	i := slices.IndexFunc(all, func(c domain.Component) bool { return c.ID == id })
	if i < 0 {
		return domain.Component{}, domain.NotFound("component", id)
	}
	return all[i], nil
}

func (s *Service) CreateComponent(ctx context.Context, in domain.ComponentInput) (domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.componentsLocked(ctx)
	if err != nil {
		return domain.Component{}, err
	}

	c := domain.NewComponent(s.newID(), in, s.now().UTC())
	all = append(all, c)
	if err := write(ctx, s.blobs, ComponentsKey, all); err != nil {
		return domain.Component{}, err
	}
	return c, nil
}

func (s *Service) UpdateComponent(ctx context.Context, id string, in domain.ComponentInput) (domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.componentsLocked(ctx)
	if err != nil {
		return domain.Component{}, err
	}
	i := slices.IndexFunc(all, func(c domain.Component) bool { return c.ID == id })
	if i < 0 {
		return domain.Component{}, domain.NotFound("component", id)
	}

	all[i] = all[i].Apply(in, s.now().UTC())
	if err := write(ctx, s.blobs, ComponentsKey, all); err != nil {
		return domain.Component{}, err
	}
	return all[i], nil
}

func (s *Service) DeleteComponent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.componentsLocked(ctx)
	if err != nil {
		return err
	}
	n := len(all)
	all = slices.DeleteFunc(all, func(c domain.Component) bool { return c.ID == id })
	if len(all) == n {
		return domain.NotFound("component", id)
	}
	return write(ctx, s.blobs, ComponentsKey, all)
}

// componentsLocked loads the components blob, seeding defaults when empty.
func (s *Service) componentsLocked(ctx context.Context) ([]domain.Component, error) {
	all, err := read[domain.Component](ctx, s.blobs, ComponentsKey)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		return all, nil
	}
	return s.seedLocked(ctx)
}

func (s *Service) seedLocked(ctx context.Context) ([]domain.Component, error) {
	inputs, err := s.defaults()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	all := make([]domain.Component, 0, len(inputs))
	for _, in := range inputs {
		all = append(all, domain.NewComponent(s.newID(), in, now))
	}
	if err := write(ctx, s.blobs, ComponentsKey, all); err != nil {
		return nil, err
	}
	return all, nil
}

// ─────────────────────────────────────────────────────────────────
// Projects
// ─────────────────────────────────────────────────────────────────

// ListProjects returns projects most recently saved first, restricted to
// userID when it is not empty.
func (s *Service) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.Project](ctx, s.blobs, ProjectsKey)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		all = slices.DeleteFunc(all, func(p domain.Project) bool { return p.UserID != userID })
	}
	slices.SortStableFunc(all, func(a, b domain.Project) int {
		return b.DateSaved.Compare(a.DateSaved)
	})
	return all, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.Project](ctx, s.blobs, ProjectsKey)
	if err != nil {
		return domain.Project{}, err
	}
	i := slices.IndexFunc(all, func(p domain.Project) bool { return p.ID == id })
	if i < 0 {
		return domain.Project{}, domain.NotFound("project", id)
	}
	return all[i], nil
}

// SaveProject stores p under a new id and stamps DateSaved.
func (s *Service) SaveProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.Project](ctx, s.blobs, ProjectsKey)
	if err != nil {
		return domain.Project{}, err
	}

	p = p.Normalize()
	p.ID = s.newID()
	p.DateSaved = s.now().UTC()
	all = append(all, p)
	if err := write(ctx, s.blobs, ProjectsKey, all); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (s *Service) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.Project](ctx, s.blobs, ProjectsKey)
	if err != nil {
		return domain.Project{}, err
	}
	i := slices.IndexFunc(all, func(p domain.Project) bool { return p.ID == id })
	if i < 0 {
		return domain.Project{}, domain.NotFound("project", id)
	}

	all[i] = patch.Apply(all[i])
	if err := write(ctx, s.blobs, ProjectsKey, all); err != nil {
		return domain.Project{}, err
	}
	return all[i], nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.Project](ctx, s.blobs, ProjectsKey)
	if err != nil {
		return err
	}
	n := len(all)
	all = slices.DeleteFunc(all, func(p domain.Project) bool { return p.ID == id })
	if len(all) == n {
		return domain.NotFound("project", id)
	}
	return write(ctx, s.blobs, ProjectsKey, all)
}

// ─────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────

func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.User](ctx, s.blobs, UsersKey)
	if err != nil {
		return domain.User{}, err
	}
	i := slices.IndexFunc(all, func(u domain.User) bool { return u.ID == id })
	if i < 0 {
		return domain.User{}, domain.NotFound("user", id)
	}
	return all[i], nil
}

// CreateUser stores u, replacing any user with the same id.
func (s *Service) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.User](ctx, s.blobs, UsersKey)
	if err != nil {
		return domain.User{}, err
	}

	if u.ID == "" {
		u.ID = s.newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	if i := slices.IndexFunc(all, func(x domain.User) bool { return x.ID == u.ID }); i >= 0 {
		all[i] = u
	} else {
		all = append(all, u)
	}
	if err := write(ctx, s.blobs, UsersKey, all); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.User](ctx, s.blobs, UsersKey)
	if err != nil {
		return domain.User{}, err
	}
	i := slices.IndexFunc(all, func(u domain.User) bool { return u.ID == id })
	if i < 0 {
		return domain.User{}, domain.NotFound("user", id)
	}

	all[i] = patch.Apply(all[i])
	if err := write(ctx, s.blobs, UsersKey, all); err != nil {
		return domain.User{}, err
	}
	return all[i], nil
}

// ─────────────────────────────────────────────────────────────────
// Maintenance
// ─────────────────────────────────────────────────────────────────

// InitializeDefaultData writes the default catalog when the components blob
// is empty and reports whether it did.
func (s *Service) InitializeDefaultData(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := read[domain.Component](ctx, s.blobs, ComponentsKey)
	if err != nil {
		return false, err
	}
	if len(all) > 0 {
		return false, nil
	}
	if _, err := s.seedLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ClearAllData removes the three collections.
func (s *Service) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.RemoveKeys(ctx, ComponentsKey, ProjectsKey, UsersKey); err != nil {
		return fmt.Errorf("failed to clear local data: %w", err)
	}
	return nil
}

func read[T any](ctx context.Context, blobs Blobs, key string) ([]T, error) {
	raw, ok, err := blobs.ReadBlob(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func write[T any](ctx context.Context, blobs Blobs, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return blobs.WriteBlob(ctx, key, string(data))
}
