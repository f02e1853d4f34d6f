// Package hybrid routes every data operation to the remote store when it is
// reachable and to the local store otherwise.
package hybrid

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/atal/internal/connectivity"
	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/ideas"
	"github.com/MrSnakeDoc/atal/internal/logger"
	"github.com/MrSnakeDoc/atal/internal/retry"
)

// Backend is the typed surface both stores implement.
type Backend interface {
	ListComponents(ctx context.Context, filter domain.ComponentFilter) ([]domain.Component, error)
	GetComponent(ctx context.Context, id string) (domain.Component, error)
	CreateComponent(ctx context.Context, in domain.ComponentInput) (domain.Component, error)
	UpdateComponent(ctx context.Context, id string, in domain.ComponentInput) (domain.Component, error)
	DeleteComponent(ctx context.Context, id string) error

	ListProjects(ctx context.Context, userID string) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	SaveProject(ctx context.Context, p domain.Project) (domain.Project, error)
	UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error

	GetUser(ctx context.Context, id string) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error)

	InitializeDefaultData(ctx context.Context) (bool, error)
}

// Remote is the networked store.
type Remote interface {
	Backend
	ListIdeas(ctx context.Context) ([]domain.ProjectIdea, error)
	EnableNetwork()
}

// Prober tells whether the remote store is worth calling.
type Prober interface {
	Probe(ctx context.Context) bool
	ForceProbe(ctx context.Context) bool
	MarkOffline()
	Status() connectivity.Status
}

// ConnectionStatus is what ConnectionStatus reports.
type ConnectionStatus struct {
	connectivity.Status
	RemoteConfigured bool `json:"remote_configured"`
}

// Service is the fallback dispatcher. It owns no data.
type Service struct {
	remote Remote
	local  Backend
	prober Prober
	policy retry.Policy
	logger logger.Logger
}

// New wires a dispatcher. remote may be nil, in which case every call is
// served locally. The policy's BeforeAttempt defaults to re-enabling the
// remote network channel.
func New(remote Remote, local Backend, prober Prober, policy retry.Policy, log logger.Logger) *Service {
	if remote != nil && policy.BeforeAttempt == nil {
		policy.BeforeAttempt = remote.EnableNetwork
	}
	if policy.Logger == nil {
		policy.Logger = log
	}
	return &Service{
		remote: remote,
		local:  local,
		prober: prober,
		policy: policy,
		logger: log,
	}
}

// route runs the per-call algorithm: probe, remote through retry, local on
// failure or when offline.
func route[T any](
	ctx context.Context,
	s *Service,
	op string,
	remote func(ctx context.Context) (T, error),
	local func(ctx context.Context) (T, error),
) (Result[T], error) {
	var remoteErr error

	if s.remote != nil && s.prober.Probe(ctx) {
		v, err := retry.Do(ctx, s.policy.WithName(op), remote)
		if err == nil {
			return Result[T]{Value: v, Source: SourceRemote}, nil
		}

		switch {
		case ctx.Err() != nil:
			return Result[T]{}, ctx.Err()
		case domain.IsConfiguration(err):
			s.prober.MarkOffline()
			s.logger.Error("remote store misconfigured",
				logger.String("op", op),
				logger.Error(err))
			return Result[T]{Source: SourceRemote, RemoteErr: err}, err
		case domain.IsNotFound(err):
			s.logger.Debug("not found remotely, trying local store",
				logger.String("op", op))
		default:
			s.prober.MarkOffline()
			s.logger.Warn("remote store failed, falling back to local",
				logger.String("op", op),
				logger.Error(err))
		}
		remoteErr = err
	}

	v, err := local(ctx)
	if err != nil {
		// A local not-found is an answer, not a fault: the local store
		// served the call even when the remote store failed before it.
		if remoteErr == nil || domain.IsNotFound(err) {
			return Result[T]{Source: SourceLocal, RemoteErr: remoteErr}, err
		}
		s.logger.Error("both stores failed",
			logger.String("op", op),
			logger.Error(err))
		return Result[T]{Source: SourceLocal, RemoteErr: remoteErr},
			&UnavailableError{Op: op, Remote: remoteErr, Local: err}
	}
	return Result[T]{Value: v, Source: SourceLocal, RemoteErr: remoteErr}, nil
}

// routeErr is route for operations without a value.
func routeErr(
	ctx context.Context,
	s *Service,
	op string,
	remote func(ctx context.Context) error,
	local func(ctx context.Context) error,
) (Result[struct{}], error) {
	return route(ctx, s, op,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, remote(ctx) },
		func(ctx context.Context) (struct{}, error) { return struct{}{}, local(ctx) },
	)
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s id is required", domain.ErrValidation, kind)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Components
// ─────────────────────────────────────────────────────────────────

func (s *Service) GetComponents(ctx context.Context, filter domain.ComponentFilter) (Result[[]domain.Component], error) {
	return route(ctx, s, "get_components",
		func(ctx context.Context) ([]domain.Component, error) { return s.remote.ListComponents(ctx, filter) },
		func(ctx context.Context) ([]domain.Component, error) { return s.local.ListComponents(ctx, filter) },
	)
}

func (s *Service) GetComponent(ctx context.Context, id string) (Result[domain.Component], error) {
	if err := requireID("component", id); err != nil {
		return Result[domain.Component]{}, err
	}
	return route(ctx, s, "get_component",
		func(ctx context.Context) (domain.Component, error) { return s.remote.GetComponent(ctx, id) },
		func(ctx context.Context) (domain.Component, error) { return s.local.GetComponent(ctx, id) },
	)
}

func (s *Service) CreateComponent(ctx context.Context, in domain.ComponentInput) (Result[domain.Component], error) {
	in = in.Normalize()
	if err := domain.Validate(in); err != nil {
		return Result[domain.Component]{}, err
	}
	return route(ctx, s, "create_component",
		func(ctx context.Context) (domain.Component, error) { return s.remote.CreateComponent(ctx, in) },
		func(ctx context.Context) (domain.Component, error) { return s.local.CreateComponent(ctx, in) },
	)
}

func (s *Service) UpdateComponent(ctx context.Context, id string, in domain.ComponentInput) (Result[domain.Component], error) {
	if err := requireID("component", id); err != nil {
		return Result[domain.Component]{}, err
	}
	in = in.Normalize()
	if err := domain.Validate(in); err != nil {
		return Result[domain.Component]{}, err
	}
	return route(ctx, s, "update_component",
		func(ctx context.Context) (domain.Component, error) { return s.remote.UpdateComponent(ctx, id, in) },
		func(ctx context.Context) (domain.Component, error) { return s.local.UpdateComponent(ctx, id, in) },
	)
}

func (s *Service) DeleteComponent(ctx context.Context, id string) (Result[struct{}], error) {
	if err := requireID("component", id); err != nil {
		return Result[struct{}]{}, err
	}
	return routeErr(ctx, s, "delete_component",
		func(ctx context.Context) error { return s.remote.DeleteComponent(ctx, id) },
		func(ctx context.Context) error { return s.local.DeleteComponent(ctx, id) },
	)
}

// ─────────────────────────────────────────────────────────────────
// Projects
// ─────────────────────────────────────────────────────────────────

func (s *Service) GetProjects(ctx context.Context, userID string) (Result[[]domain.Project], error) {
	return route(ctx, s, "get_projects",
		func(ctx context.Context) ([]domain.Project, error) { return s.remote.ListProjects(ctx, userID) },
		func(ctx context.Context) ([]domain.Project, error) { return s.local.ListProjects(ctx, userID) },
	)
}

func (s *Service) GetProject(ctx context.Context, id string) (Result[domain.Project], error) {
	if err := requireID("project", id); err != nil {
		return Result[domain.Project]{}, err
	}
	return route(ctx, s, "get_project",
		func(ctx context.Context) (domain.Project, error) { return s.remote.GetProject(ctx, id) },
		func(ctx context.Context) (domain.Project, error) { return s.local.GetProject(ctx, id) },
	)
}

func (s *Service) SaveProject(ctx context.Context, p domain.Project) (Result[domain.Project], error) {
	p = p.Normalize()
	if err := domain.Validate(p); err != nil {
		return Result[domain.Project]{}, err
	}
	return route(ctx, s, "save_project",
		func(ctx context.Context) (domain.Project, error) { return s.remote.SaveProject(ctx, p) },
		func(ctx context.Context) (domain.Project, error) { return s.local.SaveProject(ctx, p) },
	)
}

func (s *Service) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (Result[domain.Project], error) {
	if err := requireID("project", id); err != nil {
		return Result[domain.Project]{}, err
	}
	if err := domain.Validate(patch); err != nil {
		return Result[domain.Project]{}, err
	}
	return route(ctx, s, "update_project",
		func(ctx context.Context) (domain.Project, error) { return s.remote.UpdateProject(ctx, id, patch) },
		func(ctx context.Context) (domain.Project, error) { return s.local.UpdateProject(ctx, id, patch) },
	)
}

func (s *Service) DeleteProject(ctx context.Context, id string) (Result[struct{}], error) {
	if err := requireID("project", id); err != nil {
		return Result[struct{}]{}, err
	}
	return routeErr(ctx, s, "delete_project",
		func(ctx context.Context) error { return s.remote.DeleteProject(ctx, id) },
		func(ctx context.Context) error { return s.local.DeleteProject(ctx, id) },
	)
}

// ─────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────

func (s *Service) GetUser(ctx context.Context, id string) (Result[domain.User], error) {
	if err := requireID("user", id); err != nil {
		return Result[domain.User]{}, err
	}
	return route(ctx, s, "get_user",
		func(ctx context.Context) (domain.User, error) { return s.remote.GetUser(ctx, id) },
		func(ctx context.Context) (domain.User, error) { return s.local.GetUser(ctx, id) },
	)
}

func (s *Service) CreateUser(ctx context.Context, u domain.User) (Result[domain.User], error) {
	u.Name = strings.TrimSpace(u.Name)
	if err := domain.Validate(u); err != nil {
		return Result[domain.User]{}, err
	}
	return route(ctx, s, "create_user",
		func(ctx context.Context) (domain.User, error) { return s.remote.CreateUser(ctx, u) },
		func(ctx context.Context) (domain.User, error) { return s.local.CreateUser(ctx, u) },
	)
}

func (s *Service) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (Result[domain.User], error) {
	if err := requireID("user", id); err != nil {
		return Result[domain.User]{}, err
	}
	if err := domain.Validate(patch); err != nil {
		return Result[domain.User]{}, err
	}
	return route(ctx, s, "update_user",
		func(ctx context.Context) (domain.User, error) { return s.remote.UpdateUser(ctx, id, patch) },
		func(ctx context.Context) (domain.User, error) { return s.local.UpdateUser(ctx, id, patch) },
	)
}

// EnsureUser returns the stored user with u's id, creating it from u on
// first sight.
func (s *Service) EnsureUser(ctx context.Context, u domain.User) (Result[domain.User], error) {
	if err := requireID("user", u.ID); err != nil {
		return Result[domain.User]{}, err
	}
	res, err := s.GetUser(ctx, u.ID)
	if err == nil {
		return res, nil
	}
	if !domain.IsNotFound(err) {
		return res, err
	}

	s.logger.Info("provisioning new user", logger.String("user_id", u.ID))
	return s.CreateUser(ctx, u)
}

// ─────────────────────────────────────────────────────────────────
// Ideas and maintenance
// ─────────────────────────────────────────────────────────────────

// GenerateProjectIdeas filters the hosted template table, or the smaller
// offline table when the remote store is unavailable.
func (s *Service) GenerateProjectIdeas(ctx context.Context, req domain.GenerateRequest) (Result[[]domain.ProjectIdea], error) {
	return route(ctx, s, "generate_project_ideas",
		func(ctx context.Context) ([]domain.ProjectIdea, error) {
			templates, err := s.remote.ListIdeas(ctx)
			if err != nil {
				return nil, err
			}
			if len(templates) == 0 {
				templates = ideas.Catalog()
			}
			return ideas.Generate(templates, req), nil
		},
		func(context.Context) ([]domain.ProjectIdea, error) {
			return ideas.Generate(ideas.OfflineCatalog(), req), nil
		},
	)
}

// InitializeDefaultData seeds whichever store is active. Value reports
// whether defaults were written.
func (s *Service) InitializeDefaultData(ctx context.Context) (Result[bool], error) {
	res, err := route(ctx, s, "initialize_default_data",
		func(ctx context.Context) (bool, error) { return s.remote.InitializeDefaultData(ctx) },
		s.local.InitializeDefaultData,
	)
	if err == nil && res.Value {
		s.logger.Info("default data installed", logger.String("source", string(res.Source)))
	}
	return res, err
}

// ConnectionStatus reports the memoized connectivity flag.
func (s *Service) ConnectionStatus() ConnectionStatus {
	st := s.prober.Status()
	if s.remote == nil {
		st.Online = false
	}
	return ConnectionStatus{Status: st, RemoteConfigured: s.remote != nil}
}

// ForceConnectionCheck probes the remote store now.
func (s *Service) ForceConnectionCheck(ctx context.Context) bool {
	if s.remote == nil {
		return false
	}
	return s.prober.ForceProbe(ctx)
}
