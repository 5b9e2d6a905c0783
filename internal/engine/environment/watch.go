package environment

import (
	"context"
	"errors"
	"maps"
	"path/filepath"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
)

// Watch rebuilds name whenever the content of its spec, or of a spec it extends,
// changes. It blocks until ctx is done or the watcher stops. Build failures are
// logged and do not stop watching.
func (s *Service) Watch(ctx context.Context, name string, watcher ports.Watcher) error {
	digests, err := s.digests(name)
	if err != nil {
		return err
	}

	if err := watcher.Start(ctx, filepath.Dir(s.envs.Path(name))); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	s.logger.Info("watching " + name)
	for batch := range watcher.Events() {
		if !s.touches(batch, digests) {
			continue
		}

		current, err := s.digests(name)
		if err != nil {
			s.logger.Error(err)
			continue
		}
		if maps.Equal(current, digests) {
			continue
		}
		digests = current

		s.logger.Info("spec changed, rebuilding " + name)
		if _, err := s.Build(ctx, name); err != nil {
			s.logger.Error(err)
			continue
		}
		s.logger.Info("rebuilt " + name)
	}
	return nil
}

// digests fingerprints the spec of name and of every environment it extends.
// A base that does not exist yet is recorded with an empty digest so that its
// creation is noticed.
func (s *Service) digests(name string) (map[string]string, error) {
	digests := make(map[string]string)
	var visit func(name string, path domain.ExtendsPath) error
	visit = func(name string, path domain.ExtendsPath) error {
		if _, seen := digests[name]; seen {
			return nil
		}
		path, err := path.Enter(name)
		if err != nil {
			return err
		}

		env, err := s.envs.Read(name)
		if errors.Is(err, domain.ErrEnvironmentNotFound) && len(path) > 1 {
			digests[name] = ""
			return nil
		}
		if err != nil {
			return err
		}

		if digests[name], err = s.envs.Digest(name); err != nil {
			return err
		}
		for _, base := range env.Extends {
			if err := visit(base, path); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(name, nil); err != nil {
		return nil, err
	}
	return digests, nil
}

func (s *Service) touches(batch []ports.WatchEvent, digests map[string]string) bool {
	for _, event := range batch {
		for name := range digests {
			if filepath.Clean(event.Path) == filepath.Clean(s.envs.Path(name)) {
				return true
			}
		}
	}
	return false
}
