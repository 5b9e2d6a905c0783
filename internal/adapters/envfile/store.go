// Package envfile stores environment specs as YAML documents, one file per name.
package envfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.EnvironmentStore = (*Store)(nil)

// Store implements ports.EnvironmentStore below a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Dir returns the directory holding the specs.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file of the spec named name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+domain.SpecExt)
}

// Read loads and decodes the spec named name. Unknown fields are ignored and the
// stored name is replaced by the file name.
func (s *Store) Read(name string) (*domain.Environment, error) {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return nil, err
	}

	data, err := s.read(name)
	if err != nil {
		return nil, err
	}

	var spec domain.Environment
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSpecParseFailed.Error()), "path", s.Path(name))
	}

	env := &domain.Environment{Name: name}
	env.Apply(spec)
	return env, nil
}

// Write encodes env and replaces its file. The document is written to a temporary
// file first so a failed write never truncates the previous spec.
func (s *Store) Write(env *domain.Environment) error {
	if err := domain.ValidateEnvironmentName(env.Name); err != nil {
		return err
	}

	out := env.Clone()
	out.Prune()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSpecWriteFailed.Error()), "environment", env.Name)
	}
	if err := enc.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSpecWriteFailed.Error()), "environment", env.Name)
	}

	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create environment directory"), "path", s.dir)
	}

	tmp, err := os.CreateTemp(s.dir, "."+env.Name+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSpecWriteFailed.Error()), "path", s.dir)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrSpecWriteFailed.Error()), "path", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSpecWriteFailed.Error()), "path", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSpecWriteFailed.Error()), "path", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.Path(env.Name)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSpecWriteFailed.Error()), "path", s.Path(env.Name))
	}

	return nil
}

// Delete removes the spec named name.
func (s *Store) Delete(name string) error {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return err
	}

	if err := os.Remove(s.Path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(name, s.Path(name))
		}
		return zerr.With(zerr.Wrap(err, "failed to delete environment spec"), "path", s.Path(name))
	}
	return nil
}

// Exists reports whether a spec named name is stored.
func (s *Store) Exists(name string) (bool, error) {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return false, err
	}

	_, err := os.Stat(s.Path(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, zerr.With(zerr.Wrap(err, domain.ErrSpecReadFailed.Error()), "path", s.Path(name))
	}
}

// List returns the names of all stored specs, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to list environments"), "path", s.dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), domain.SpecExt)
		if !ok || domain.ValidateEnvironmentName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Digest returns the xxhash of the stored bytes of the spec named name.
func (s *Store) Digest(name string) (string, error) {
	if err := domain.ValidateEnvironmentName(name); err != nil {
		return "", err
	}

	data, err := s.read(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// NameOf returns the environment name stored at path, if path is a spec file.
func NameOf(path string) (string, bool) {
	name, ok := strings.CutSuffix(filepath.Base(path), domain.SpecExt)
	if !ok || domain.ValidateEnvironmentName(name) != nil {
		return "", false
	}
	return name, true
}

func (s *Store) read(name string) ([]byte, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path) //nolint:gosec // name is validated
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(name, path)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSpecReadFailed.Error()), "path", path)
	}
	return data, nil
}

func notFound(name, path string) error {
	err := zerr.With(zerr.Wrap(domain.ErrEnvironmentNotFound, "read environment spec"), "environment", name)
	return zerr.With(err, "path", path)
}
