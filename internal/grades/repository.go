package grades

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

const gradeColumns = `id, grade, description, student_id, test_id, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns grades, restricted to one student when studentID is set.
func (r *Repository) List(ctx context.Context, studentID *int64) ([]Grade, error) {
	query := `SELECT ` + gradeColumns + ` FROM grades`
	var args []any
	if studentID != nil {
		query += ` WHERE student_id = $1`
		args = append(args, *studentID)
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanGrade)
}

// Get fetches a grade by id.
func (r *Repository) Get(ctx context.Context, id int64) (Grade, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+gradeColumns+` FROM grades WHERE id = $1`, id)
	if err != nil {
		return Grade{}, err
	}
	g, err := pgx.CollectExactlyOneRow(rows, scanGrade)
	if errors.Is(err, pgx.ErrNoRows) {
		return Grade{}, shared.ErrNotFound
	}
	return g, err
}

// Create inserts a grade.
func (r *Repository) Create(ctx context.Context, g Grade) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO grades (grade, description, student_id, test_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		g.Grade, g.Description, g.StudentID, g.TestID).Scan(&id)
	if err != nil {
		return 0, mapWriteErr(err, g.StudentID, g.TestID)
	}
	return id, nil
}

// Update writes the supplied fields of p to grade id. studentID and testID
// are the values the row ends up with.
func (r *Repository) Update(ctx context.Context, id int64, p PatchInput, studentID, testID int64) error {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Grade != nil {
		add("grade", *p.Grade)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.StudentID != nil {
		add("student_id", *p.StudentID)
	}
	if p.TestID != nil {
		add("test_id", *p.TestID)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE grades SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return mapWriteErr(err, studentID, testID)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a grade.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func mapWriteErr(err error, studentID, testID int64) error {
	if _, ok := db.UniqueViolation(err); ok {
		return duplicate(studentID, testID)
	}
	return err
}

func duplicate(studentID, testID int64) error {
	return shared.BadRequestf("Student with id=%d has already a grade for test with id=%d", studentID, testID)
}

func scanGrade(row pgx.CollectableRow) (Grade, error) {
	var g Grade
	err := row.Scan(&g.ID, &g.Grade, &g.Description, &g.StudentID, &g.TestID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}
