// Package catalog implements the package catalog on an embedded SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DumpTable is the only table Dump supports.
const DumpTable = "packages"

var _ ports.CatalogStore = (*Store)(nil)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store implements ports.CatalogStore.
//
// A Store returned by Open owns the database. Stores handed to Transaction
// callbacks share it and are bound to the transaction.
type Store struct {
	db *sql.DB
	q  querier
	tx bool
}

// Open opens or creates the catalog database at path and ensures its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogOpenFailed.Error()), "path", path)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogOpenFailed.Error()), "path", path)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogOpenFailed.Error()), "path", path)
	}

	return &Store{db: db, q: db}, nil
}

// InsertBatch appends entries, computing each version key.
func (s *Store) InsertBatch(ctx context.Context, entries []domain.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if !s.tx {
		return s.Transaction(ctx, func(tx ports.CatalogStore) error {
			return tx.InsertBatch(ctx, entries)
		})
	}

	for _, e := range entries {
		if _, err := s.q.ExecContext(ctx, insertPackage,
			e.Type, e.Name, e.Version, e.VersionKey(), e.Runtime, e.Channel,
			e.Attribute, e.FullName, e.Priority, e.Description, e.Meta,
		); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCatalogWriteFailed.Error()), "attr", e.Attribute)
		}
	}
	return nil
}

// Match returns the candidates for req, best first.
func (s *Store) Match(ctx context.Context, req domain.PackageRequest) ([]domain.CatalogEntry, error) {
	query := selectMatch
	args := []any{req.Name}
	if req.Version != "" {
		query += " AND version = ?"
		args = append(args, req.Version)
	}
	query += orderMatch

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogQueryFailed.Error()), "package", req.String())
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var entries []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(&e.Type, &e.Name, &e.Version, &e.Runtime, &e.Channel,
			&e.Attribute, &e.FullName, &e.Priority, &e.Description, &e.Meta); err != nil {
			return nil, zerr.Wrap(err, domain.ErrCatalogQueryFailed.Error())
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrCatalogQueryFailed.Error())
	}
	return entries, nil
}

// Search matches query.Term against package names and descriptions. A trailing
// "*" turns the term into a prefix query.
func (s *Store) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	sqlQuery := selectSearch
	args := []any{matchExpression(query.Term)}
	if query.Type != "" {
		sqlQuery += " AND p.type = ?"
		args = append(args, query.Type)
	}
	sqlQuery += groupSearch
	args = append(args, limit)

	results, err := s.grouped(ctx, sqlQuery, args...)
	if err != nil {
		return nil, zerr.With(err, "term", query.Term)
	}
	return results, nil
}

// Dump returns every package grouped by name and type. Only DumpTable is supported.
func (s *Store) Dump(ctx context.Context, table string) ([]domain.SearchResult, error) {
	if table != DumpTable {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedDump, "dump catalog"), "table", table)
	}
	return s.grouped(ctx, selectDump)
}

// Transaction runs fn inside a single transaction. Nested calls reuse the
// enclosing transaction.
func (s *Store) Transaction(ctx context.Context, fn func(ports.CatalogStore) error) error {
	if s.tx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCatalogWriteFailed.Error())
	}

	if err := fn(&Store{db: s.db, q: tx, tx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return zerr.Wrap(err, domain.ErrCatalogWriteFailed.Error())
	}
	return nil
}

// RebuildIndex repopulates the full text index from the packages table.
func (s *Store) RebuildIndex(ctx context.Context) error {
	if !s.tx {
		return s.Transaction(ctx, func(tx ports.CatalogStore) error {
			return tx.RebuildIndex(ctx)
		})
	}

	if _, err := s.q.ExecContext(ctx, rebuildIndex); err != nil {
		return zerr.Wrap(err, domain.ErrCatalogWriteFailed.Error())
	}
	return nil
}

// Close closes the database. It is a no-op on transaction-bound stores.
func (s *Store) Close() error {
	if s.tx {
		return nil
	}
	return s.db.Close()
}

func (s *Store) grouped(ctx context.Context, query string, args ...any) ([]domain.SearchResult, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrCatalogQueryFailed.Error())
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		if err := rows.Scan(&r.Name, &r.Type, &r.Version, &r.Channel, &r.Description); err != nil {
			return nil, zerr.Wrap(err, domain.ErrCatalogQueryFailed.Error())
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrCatalogQueryFailed.Error())
	}
	return results, nil
}

// matchExpression builds an FTS5 query matching term in either column. The term
// is quoted so punctuation in package names is not parsed as query syntax.
func matchExpression(term string) string {
	term = strings.TrimSpace(term)
	prefix := strings.HasSuffix(term, "*")
	term = strings.TrimRight(term, "*")

	phrase := `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	if prefix {
		phrase += " *"
	}
	return "name : " + phrase + " OR description : " + phrase
}
