package ports

import (
	"context"

	"go.trai.ch/nixster/internal/core/domain"
)

// CatalogStore is the persistent package catalog and its full text index.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CatalogStore interface {
	// InsertBatch appends entries to the catalog. Existing rows are never updated.
	InsertBatch(ctx context.Context, entries []domain.CatalogEntry) error

	// Match returns the rows for a package name, and version when set, ordered by
	// version key descending then priority descending.
	Match(ctx context.Context, req domain.PackageRequest) ([]domain.CatalogEntry, error)

	// Search runs a full text query and groups the hits by name and type.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)

	// Dump returns one table grouped the way Search groups its hits.
	Dump(ctx context.Context, table string) ([]domain.SearchResult, error)

	// Transaction runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(CatalogStore) error) error

	// RebuildIndex repopulates the full text index from the catalog.
	RebuildIndex(ctx context.Context) error

	// Close releases the underlying database.
	Close() error
}
