package ports

import "go.trai.ch/nixster/internal/core/domain"

// EnvironmentStore persists environment specs, one document per name.
//
//go:generate mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentStore interface {
	// Read loads the spec stored under name.
	// It returns domain.ErrEnvironmentNotFound when there is none.
	Read(name string) (*domain.Environment, error)

	// Write replaces the stored spec of env.Name.
	Write(env *domain.Environment) error

	// Delete removes the stored spec.
	// It returns domain.ErrEnvironmentNotFound when there is none.
	Delete(name string) error

	// Exists reports whether a spec is stored under name.
	Exists(name string) (bool, error)

	// List returns the stored names in lexical order.
	List() ([]string, error)

	// Path returns where the spec of name is stored.
	Path(name string) string

	// Digest fingerprints the stored bytes of the spec.
	Digest(name string) (string, error)
}
