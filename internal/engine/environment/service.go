// Package environment implements the lifecycle of environment specs: creating,
// mutating, building and inspecting them.
package environment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/nixster/internal/engine/installer"
	"go.trai.ch/nixster/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// Service manages environments.
//
// Mutations of the same environment are serialized within the process. The spec
// is only written after the package manager succeeded, so a failed build leaves
// the stored spec as it was.
type Service struct {
	envs      ports.EnvironmentStore
	pm        ports.PackageManager
	resolver  *resolver.Resolver
	installer *installer.Installer
	tracer    ports.Tracer
	logger    ports.Logger
	profiles  string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Service. Profiles of environments are created below profiles.
func New(
	envs ports.EnvironmentStore,
	pm ports.PackageManager,
	res *resolver.Resolver,
	inst *installer.Installer,
	tracer ports.Tracer,
	logger ports.Logger,
	profiles string,
) *Service {
	return &Service{
		envs:      envs,
		pm:        pm,
		resolver:  res,
		installer: inst,
		tracer:    tracer,
		logger:    logger,
		profiles:  profiles,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lock acquires the mutex of name and returns its release function.
func (s *Service) lock(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Path returns where the spec of name is stored.
func (s *Service) Path(name string) string {
	return s.envs.Path(name)
}

// Profile returns the package manager profile of name.
func (s *Service) Profile(name string) string {
	return domain.ProfilePath(s.profiles, name)
}

// Create builds a new environment from spec and stores it.
//
// It fails with domain.ErrEnvironmentExists when a spec is already stored under
// name, unless force is set.
func (s *Service) Create(ctx context.Context, name string, spec domain.Environment, force bool) (*domain.Environment, error) {
	env, err := domain.NewEnvironment(name)
	if err != nil {
		return nil, err
	}
	env.Apply(spec)

	defer s.lock(name)()

	if !force {
		exists, err := s.envs.Exists(name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, zerr.With(zerr.Wrap(domain.ErrEnvironmentExists, "create environment"), "environment", name)
		}
	}

	if err := s.build(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// Read loads the stored spec of name.
func (s *Service) Read(name string) (*domain.Environment, error) {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return nil, err
	}
	return s.envs.Read(name)
}

// Delete removes the stored spec of name. Installed packages are left alone.
func (s *Service) Delete(name string) error {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return err
	}
	defer s.lock(name)()
	return s.envs.Delete(name)
}

// Build resolves and installs the stored spec of name, then stores it again.
func (s *Service) Build(ctx context.Context, name string) (*domain.Environment, error) {
	return s.mutate(ctx, name, func(*domain.Environment) {})
}

// Add adds packages to name and rebuilds it.
func (s *Service) Add(ctx context.Context, name string, pkgs []string) (*domain.Environment, error) {
	return s.mutate(ctx, name, func(env *domain.Environment) { env.Add(pkgs) })
}

// Remove removes packages from name and rebuilds it.
func (s *Service) Remove(ctx context.Context, name string, pkgs []string) (*domain.Environment, error) {
	return s.mutate(ctx, name, func(env *domain.Environment) { env.Remove(pkgs) })
}

func (s *Service) mutate(ctx context.Context, name string, change func(*domain.Environment)) (*domain.Environment, error) {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return nil, err
	}
	defer s.lock(name)()

	env, err := s.envs.Read(name)
	if err != nil {
		return nil, err
	}
	change(env)

	if err := s.build(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// Upgrade upgrades packages of name, all of them when pkgs is empty, and rewrites
// its spec.
func (s *Service) Upgrade(ctx context.Context, name string, pkgs []string) (*domain.Environment, error) {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return nil, err
	}
	defer s.lock(name)()

	env, err := s.envs.Read(name)
	if err != nil {
		return nil, err
	}
	if err := s.installer.Upgrade(ctx, s.Profile(name), pkgs); err != nil {
		return nil, err
	}
	if err := s.envs.Write(env); err != nil {
		return nil, err
	}
	return env, nil
}

func (s *Service) build(ctx context.Context, env *domain.Environment) (err error) {
	ctx, span := s.tracer.Start(ctx, "build", ports.WithAttribute("environment", env.Name))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	pkgs, err := s.resolver.ResolvePackageSet(env)
	if err != nil {
		return err
	}
	span.SetAttribute("packages", len(pkgs))

	s.logger.Info(fmt.Sprintf("building %s with %d packages", env.Name, len(pkgs)))
	if err := s.installer.Install(ctx, s.Profile(env.Name), pkgs, true); err != nil {
		return err
	}
	return s.envs.Write(env)
}

// Packages returns the resolved package set of name.
func (s *Service) Packages(name string) ([]string, error) {
	env, err := s.Read(name)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolvePackageSet(env)
}

// Location returns the store directory of the profile of name.
func (s *Service) Location(name string) (string, error) {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return "", err
	}
	return s.pm.Location(s.Profile(name))
}

// Built reports whether name has been installed at least once.
func (s *Service) Built(name string) bool {
	_, err := s.Location(name)
	return err == nil
}

// List describes every stored environment. Specs that cannot be read are
// reported and skipped.
func (s *Service) List() ([]domain.EnvironmentSummary, error) {
	names, err := s.envs.List()
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.EnvironmentSummary, 0, len(names))
	for _, name := range names {
		env, err := s.envs.Read(name)
		if err != nil {
			s.logger.Warn(fmt.Sprintf("skipping environment %s: %v", name, err))
			continue
		}

		summary := domain.EnvironmentSummary{Environment: *env, Path: s.envs.Path(name)}
		if location, err := s.Location(name); err == nil {
			summary.Built = true
			summary.Location = location
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Show describes one environment. An environment that was never built has no
// location and no packages. With long set the store paths it depends on are
// included.
func (s *Service) Show(ctx context.Context, name string, long bool) (*domain.EnvironmentDescription, error) {
	env, err := s.Read(name)
	if err != nil {
		return nil, err
	}

	digest, err := s.envs.Digest(name)
	if err != nil {
		return nil, err
	}
	desc := &domain.EnvironmentDescription{
		Environment: *env,
		Path:        s.envs.Path(name),
		Digest:      digest,
	}

	location, err := s.Location(name)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return desc, nil
	case err != nil:
		return nil, err
	}
	desc.Location = location

	if desc.Packages, err = s.pm.Installed(ctx, s.Profile(name)); err != nil {
		return nil, err
	}
	if long {
		if desc.Requisites, err = s.pm.Requisites(ctx, location); err != nil {
			return nil, err
		}
	}
	return desc, nil
}
