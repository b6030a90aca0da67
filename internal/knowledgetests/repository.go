package knowledgetests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gradebook/gradebook/internal/platform/db"
	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

const testColumns = `id, name, category, test_date, class_id, subject_id, teacher_id, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all tests ordered by date.
func (r *Repository) List(ctx context.Context) ([]Test, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+testColumns+` FROM knowledge_tests ORDER BY test_date, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTest)
}

// Get fetches a test by id.
func (r *Repository) Get(ctx context.Context, id int64) (Test, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+testColumns+` FROM knowledge_tests WHERE id = $1`, id)
	if err != nil {
		return Test{}, err
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTest)
	if errors.Is(err, pgx.ErrNoRows) {
		return Test{}, shared.ErrNotFound
	}
	return t, err
}

// OwnerOf returns the owner of test id or shared.ErrNotFound.
func (r *Repository) OwnerOf(ctx context.Context, id int64) (rbac.Owner, error) {
	var teacherID int64
	err := r.pool.QueryRow(ctx, `SELECT teacher_id FROM knowledge_tests WHERE id = $1`, id).Scan(&teacherID)
	if errors.Is(err, pgx.ErrNoRows) {
		return rbac.Owner{}, shared.ErrNotFound
	}
	if err != nil {
		return rbac.Owner{}, err
	}
	return rbac.StaffOwner(teacherID), nil
}

// Create inserts a test.
func (r *Repository) Create(ctx context.Context, t Test) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO knowledge_tests (name, category, test_date, class_id, subject_id, teacher_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		t.Name, string(t.Category), t.TestDate.Time, t.ClassID, t.SubjectID, t.TeacherID).Scan(&id)
	if err != nil {
		return 0, mapWriteErr(err, t.Name)
	}
	return id, nil
}

// Update writes the supplied fields of p to test id.
func (r *Repository) Update(ctx context.Context, id int64, p PatchInput) error {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	name := ""
	if p.Name != nil {
		name = *p.Name
		add("name", name)
	}
	if p.Category != nil {
		add("category", string(*p.Category))
	}
	if p.TestDate != nil {
		add("test_date", p.TestDate.Time)
	}
	if p.ClassID != nil {
		add("class_id", *p.ClassID)
	}
	if p.SubjectID != nil {
		add("subject_id", *p.SubjectID)
	}
	if p.TeacherID != nil {
		add("teacher_id", *p.TeacherID)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE knowledge_tests SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return mapWriteErr(err, name)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a test and, through the foreign key, its grades.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM knowledge_tests WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func mapWriteErr(err error, name string) error {
	if _, ok := db.UniqueViolation(err); ok {
		return shared.BadRequestf("Knowledge test '%s' already exists", name)
	}
	return err
}

func scanTest(row pgx.CollectableRow) (Test, error) {
	var (
		t        Test
		category string
	)
	err := row.Scan(&t.ID, &t.Name, &category, &t.TestDate.Time, &t.ClassID, &t.SubjectID, &t.TeacherID, &t.CreatedAt, &t.UpdatedAt)
	t.Category = Category(category)
	return t, err
}
