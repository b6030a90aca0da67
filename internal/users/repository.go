package users

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

const userColumns = `id, email, password, firstname, lastname, role, class_id, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all users with their subjects.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, err
	}
	if err := r.attachSubjects(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches a user by id.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail fetches a user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Exists reports whether id names a user.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// CountAdmins returns the number of ADMIN users.
func (r *Repository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1`, string(shared.RoleAdmin)).Scan(&n)
	return n, err
}

// Create inserts a user, its subjects and its class assignment in one transaction.
func (r *Repository) Create(ctx context.Context, u NewUser) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password, firstname, lastname, role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role)).Scan(&id)
		if err != nil {
			return mapWriteErr(err, u.Email)
		}
		if u.ClassID != nil {
			if err := assignClass(ctx, tx, id, *u.ClassID); err != nil {
				return err
			}
		}
		return replaceSubjects(ctx, tx, id, u.SubjectIDs)
	})
	return id, err
}

// Update applies changes to user id.
func (r *Repository) Update(ctx context.Context, id int64, c Changes) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
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
		if c.Role != nil {
			add("role", string(*c.Role))
		}
		tag, err := tx.Exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
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
		if c.ClassID != nil {
			if err := assignClass(ctx, tx, id, *c.ClassID); err != nil {
				return err
			}
		}
		if c.SubjectIDs != nil {
			return replaceSubjects(ctx, tx, id, c.SubjectIDs)
		}
		return nil
	})
}

// Delete removes a user. It reports false when nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) one(ctx context.Context, query string, arg any) (User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return User{}, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	list := []User{u}
	if err := r.attachSubjects(ctx, list); err != nil {
		return User{}, err
	}
	return list[0], nil
}

func (r *Repository) attachSubjects(ctx context.Context, users []User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]int64, len(users))
	index := make(map[int64]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		index[u.ID] = i
		users[i].Subjects = []SubjectRef{}
	}
	rows, err := r.pool.Query(ctx, `
		SELECT ts.teacher_id, s.id, s.name
		FROM teachers_subjects ts
		JOIN subjects s ON s.id = ts.subject_id
		WHERE ts.teacher_id = ANY($1)
		ORDER BY s.name`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			teacherID int64
			ref       SubjectRef
		)
		if err := rows.Scan(&teacherID, &ref.ID, &ref.Name); err != nil {
			return err
		}
		i := index[teacherID]
		users[i].Subjects = append(users[i].Subjects, ref)
	}
	return rows.Err()
}

// assignClass makes userID the teacher of classID, detaching whoever held it.
func assignClass(ctx context.Context, tx pgx.Tx, userID, classID int64) error {
	if _, err := tx.Exec(ctx, `UPDATE users SET class_id = NULL, updated_at = now() WHERE class_id = $1 AND id <> $2`, classID, userID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `UPDATE users SET class_id = $2 WHERE id = $1`, userID, classID)
	return err
}

func replaceSubjects(ctx context.Context, tx pgx.Tx, userID int64, subjectIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM teachers_subjects WHERE teacher_id = $1`, userID); err != nil {
		return err
	}
	if len(subjectIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO teachers_subjects (teacher_id, subject_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`, userID, subjectIDs)
	return err
}

func mapWriteErr(err error, email string) error {
	constraint, ok := db.UniqueViolation(err)
	if !ok {
		return err
	}
	if constraint == "users_single_admin" {
		return rbac.ErrDuplicateAdmin
	}
	return shared.BadRequestf("Email '%s' already exists", email)
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &u.ClassID, &u.CreatedAt, &u.UpdatedAt)
	u.Role = shared.Role(role)
	return u, err
}
