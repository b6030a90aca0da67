package students

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gradebook/gradebook/internal/platform/db"
	"github.com/gradebook/gradebook/internal/shared"
)

const studentColumns = `id, email, password, firstname, lastname, class_id, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all students.
func (r *Repository) List(ctx context.Context) ([]Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanStudent)
}

// Get fetches a student by id.
func (r *Repository) Get(ctx context.Context, id int64) (Student, error) {
	return r.one(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
}

// FindByEmail fetches a student by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Student, error) {
	return r.one(ctx, `SELECT `+studentColumns+` FROM students WHERE email = $1`, email)
}

// Exists reports whether id names a student.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// Create inserts a student.
func (r *Repository) Create(ctx context.Context, s Student) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO students (email, password, firstname, lastname, class_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		s.Email, s.PasswordHash, s.FirstName, s.LastName, s.ClassID).Scan(&id)
	if err != nil {
		return 0, mapWriteErr(err, s.Email)
	}
	return id, nil
}

// Update applies changes to student id.
func (r *Repository) Update(ctx context.Context, id int64, c Changes) error {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if c.Email != nil {
		add("email", *c.Email)
	}
	if c.PasswordHash != nil {
		add("password", *c.PasswordHash)
	}
	if c.FirstName != nil {
		add("firstname", *c.FirstName)
	}
	if c.LastName != nil {
		add("lastname", *c.LastName)
	}
	if c.ClassID != nil {
		add("class_id", *c.ClassID)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE students SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		email := ""
		if c.Email != nil {
			email = *c.Email
		}
		return mapWriteErr(err, email)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a student. It reports false when nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) one(ctx context.Context, query string, arg any) (Student, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return Student{}, err
	}
	s, err := pgx.CollectExactlyOneRow(rows, scanStudent)
	if errors.Is(err, pgx.ErrNoRows) {
		return Student{}, shared.ErrNotFound
	}
	return s, err
}

func mapWriteErr(err error, email string) error {
	if _, ok := db.UniqueViolation(err); ok {
		return shared.BadRequestf("Email '%s' already exists", email)
	}
	return err
}

func scanStudent(row pgx.CollectableRow) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.Email, &s.PasswordHash, &s.FirstName, &s.LastName, &s.ClassID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
