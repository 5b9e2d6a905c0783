package domain

import (
	"maps"
	"regexp"
	"slices"

	"go.trai.ch/zerr"
)

var environmentNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

// Environment is the persisted specification of a named package set.
//
// Adds and Removes are kept disjoint by Add and Remove. Empty lists are stored as nil
// so that they are omitted from the serialized document.
type Environment struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Extends     []string          `yaml:"extends,omitempty" json:"extends,omitempty"`
	Adds        []string          `yaml:"adds,omitempty" json:"adds,omitempty"`
	Removes     []string          `yaml:"removes,omitempty" json:"removes,omitempty"`
	Variables   map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// NewEnvironment returns an empty environment after validating its name.
func NewEnvironment(name string) (*Environment, error) {
	if err := ValidateEnvironmentName(name); err != nil {
		return nil, err
	}
	return &Environment{Name: name}, nil
}

// ValidateEnvironmentName checks that name can be used as a storage key.
func ValidateEnvironmentName(name string) error {
	if name == "" {
		return ErrMissingEnvironmentName
	}
	if !environmentNamePattern.MatchString(name) {
		return zerr.With(zerr.Wrap(ErrInvalidEnvironmentName, "validate environment name"), "environment", name)
	}
	return nil
}

// Apply copies the recognized fields of spec onto e. The name is never overwritten.
//
// An added name is never also removed, and without a base there is nothing to
// remove from, so Removes keeps only inherited names that are not added.
func (e *Environment) Apply(spec Environment) {
	e.Description = spec.Description
	e.Extends = Dedupe(spec.Extends)
	e.Adds = Dedupe(spec.Adds)
	e.Removes = nil
	if len(e.Extends) > 0 {
		e.Removes = slices.DeleteFunc(Dedupe(spec.Removes), func(name string) bool {
			return slices.Contains(e.Adds, name)
		})
	}
	e.Variables = maps.Clone(spec.Variables)
	e.Prune()
}

// Clone returns a deep copy of e.
func (e *Environment) Clone() *Environment {
	return &Environment{
		Name:        e.Name,
		Description: e.Description,
		Extends:     slices.Clone(e.Extends),
		Adds:        slices.Clone(e.Adds),
		Removes:     slices.Clone(e.Removes),
		Variables:   maps.Clone(e.Variables),
	}
}

// Add records packages as explicitly added.
//
// A name that is currently removed is un-removed instead of being added, so an
// inherited package comes back without becoming a top-level addition.
func (e *Environment) Add(names []string) {
	pending := make([]string, 0, len(names))
	for _, name := range Dedupe(names) {
		if i := slices.Index(e.Removes, name); i >= 0 {
			e.Removes = slices.Delete(e.Removes, i, i+1)
			continue
		}
		pending = append(pending, name)
	}

	for _, name := range pending {
		if !slices.Contains(e.Adds, name) {
			e.Adds = append(e.Adds, name)
		}
	}
	e.Prune()
}

// Remove records packages as excluded.
//
// A name that is a pending addition is simply dropped from Adds. Any other name is
// recorded in Removes only when the environment extends a base, since there is
// nothing to remove it from otherwise.
func (e *Environment) Remove(names []string) {
	pending := make([]string, 0, len(names))
	for _, name := range Dedupe(names) {
		if i := slices.Index(e.Adds, name); i >= 0 {
			e.Adds = slices.Delete(e.Adds, i, i+1)
			continue
		}
		pending = append(pending, name)
	}

	if len(e.Extends) > 0 {
		for _, name := range pending {
			if !slices.Contains(e.Removes, name) {
				e.Removes = append(e.Removes, name)
			}
		}
	}
	e.Prune()
}

// Prune drops empty collections so they serialize as absent fields.
func (e *Environment) Prune() {
	if len(e.Extends) == 0 {
		e.Extends = nil
	}
	if len(e.Adds) == 0 {
		e.Adds = nil
	}
	if len(e.Removes) == 0 {
		e.Removes = nil
	}
	if len(e.Variables) == 0 {
		e.Variables = nil
	}
}

// Dedupe returns names without duplicates, keeping the first occurrence of each.
func Dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Subtract returns pkgs with every occurrence of each name in removes stripped out.
func Subtract(pkgs, removes []string) []string {
	if len(removes) == 0 {
		return pkgs
	}
	return slices.DeleteFunc(slices.Clone(pkgs), func(pkg string) bool {
		return slices.Contains(removes, pkg)
	})
}

// EnvironmentSummary describes an environment for listings.
type EnvironmentSummary struct {
	Environment `yaml:",inline"`
	Path        string `yaml:"path" json:"path"`
	Built       bool   `yaml:"built" json:"built"`
	Location    string `yaml:"location,omitempty" json:"location,omitempty"`
}

// EnvironmentDescription is the detailed view of one environment.
type EnvironmentDescription struct {
	Environment `yaml:",inline"`
	Path        string            `yaml:"path" json:"path"`
	Digest      string            `yaml:"digest,omitempty" json:"digest,omitempty"`
	Location    string            `yaml:"location,omitempty" json:"location,omitempty"`
	Packages    map[string]string `yaml:"packages,omitempty" json:"packages,omitempty"`
	Requisites  []string          `yaml:"requisites,omitempty" json:"requisites,omitempty"`
}
