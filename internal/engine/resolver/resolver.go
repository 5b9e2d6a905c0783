// Package resolver expands environment specs into package sets and matches
// package requests against the catalog.
package resolver

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

// minSuggestPrefix is the shortest prefix Suggest falls back to.
const minSuggestPrefix = 3

// Resolver computes package sets from the extends graph of an environment.
type Resolver struct {
	envs    ports.EnvironmentStore
	catalog ports.CatalogStore
}

// New creates a Resolver over the given stores.
func New(envs ports.EnvironmentStore, catalog ports.CatalogStore) *Resolver {
	return &Resolver{envs: envs, catalog: catalog}
}

// ResolvePackageSet returns the packages of env: the resolved sets of its bases in
// extends order, followed by its own adds, without its removes. Every name appears
// once, at its first position.
func (r *Resolver) ResolvePackageSet(env *domain.Environment) ([]string, error) {
	pkgs, err := r.resolve(env, nil)
	if err != nil {
		return nil, err
	}
	return domain.Dedupe(pkgs), nil
}

func (r *Resolver) resolve(env *domain.Environment, path domain.ExtendsPath) ([]string, error) {
	path, err := path.Enter(env.Name)
	if err != nil {
		return nil, err
	}

	var pkgs []string
	for _, name := range env.Extends {
		base, err := r.envs.Read(name)
		if err != nil {
			if errors.Is(err, domain.ErrEnvironmentNotFound) {
				wrapped := zerr.With(zerr.Wrap(domain.ErrUnknownBaseEnvironment, "resolve extends"), "environment", name)
				return nil, zerr.With(wrapped, "path", r.envs.Path(name))
			}
			return nil, err
		}

		basePkgs, err := r.resolve(base, path)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, basePkgs...)
	}

	pkgs = append(pkgs, env.Adds...)
	return domain.Subtract(pkgs, env.Removes), nil
}

// MatchPackage returns the catalog candidates for a "name" or "name==version"
// request, best first. No candidates is not an error.
func (r *Resolver) MatchPackage(ctx context.Context, pkg string) ([]domain.CatalogEntry, error) {
	return r.catalog.Match(ctx, domain.ParsePackageRequest(pkg))
}

// Search runs a full text query against the catalog.
func (r *Resolver) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	return r.catalog.Search(ctx, query)
}

// Suggest returns up to n catalog package names resembling pkg, best first.
//
// It searches for names starting with pkg and retries with shorter prefixes until
// something matches. The hits are ranked by fuzzy matching against the prefix that
// found them.
func (r *Resolver) Suggest(ctx context.Context, pkg string, n int) ([]string, error) {
	prefix := domain.ParsePackageRequest(pkg).Name
	for utf8.RuneCountInString(prefix) >= minSuggestPrefix {
		results, err := r.catalog.Search(ctx, domain.SearchQuery{Term: prefix + "*"})
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return rank(prefix, results, n), nil
		}
		_, size := utf8.DecodeLastRuneInString(prefix)
		prefix = strings.TrimRight(prefix[:len(prefix)-size], "-_.")
	}
	return nil, nil
}

func rank(prefix string, results []domain.SearchResult, n int) []string {
	names := make([]string, 0, len(results))
	for _, result := range results {
		names = append(names, result.Name)
	}
	names = domain.Dedupe(names)

	matches := fuzzy.Find(prefix, names)
	suggestions := make([]string, 0, n)
	for _, match := range matches {
		if len(suggestions) == n {
			break
		}
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}
