package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gradebook/gradebook/internal/platform/db"
	"github.com/gradebook/gradebook/internal/shared"
)

// Repository provides PostgreSQL backed persistence for one Kind.
type Repository struct {
	pool *pgxpool.Pool
	kind Kind
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool, kind Kind) *Repository {
	return &Repository{pool: pool, kind: kind}
}

func (r *Repository) query(format string) string {
	return fmt.Sprintf(format, r.kind.Table)
}

// List returns all entries ordered by id.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, r.query(`SELECT id, name, created_at, updated_at FROM %s ORDER BY id`))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanEntry)
}

// Get fetches an entry by id.
func (r *Repository) Get(ctx context.Context, id int64) (Entry, error) {
	rows, err := r.pool.Query(ctx, r.query(`SELECT id, name, created_at, updated_at FROM %s WHERE id = $1`), id)
	if err != nil {
		return Entry{}, err
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.ErrNotFound
	}
	return e, err
}

// Exists reports whether id names an entry.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, r.query(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`), id).Scan(&ok)
	return ok, err
}

// IDsByName maps each known name to its id. Unknown names are absent.
func (r *Repository) IDsByName(ctx context.Context, names []string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, r.query(`SELECT name, id FROM %s WHERE name = ANY($1)`), names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64, len(names))
	for rows.Next() {
		var (
			name string
			id   int64
		)
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

// Create inserts a new entry.
func (r *Repository) Create(ctx context.Context, name string) (Entry, error) {
	rows, err := r.pool.Query(ctx, r.query(`INSERT INTO %s (name) VALUES ($1) RETURNING id, name, created_at, updated_at`), name)
	if err != nil {
		return Entry{}, err
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	return e, r.mapErr(err, name)
}

// Rename changes the name of an entry.
func (r *Repository) Rename(ctx context.Context, id int64, name string) (Entry, error) {
	rows, err := r.pool.Query(ctx, r.query(`UPDATE %s SET name = $2, updated_at = now() WHERE id = $1 RETURNING id, name, created_at, updated_at`), id, name)
	if err != nil {
		return Entry{}, err
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.ErrNotFound
	}
	return e, r.mapErr(err, name)
}

// Delete removes an entry. It reports false when nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, r.query(`DELETE FROM %s WHERE id = $1`), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) mapErr(err error, name string) error {
	if _, ok := db.UniqueViolation(err); ok {
		return shared.BadRequestf("%s '%s' already exists", r.kind.Label, name)
	}
	return err
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
