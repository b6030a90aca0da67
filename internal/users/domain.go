package users

import (
	"time"

	"github.com/gradebook/gradebook/internal/shared"
)

// User is a staff member: a teacher or the administrator.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Role         shared.Role  `json:"role"`
	ClassID      *int64       `json:"classId,omitempty"`
	Subjects     []SubjectRef `json:"subjects"`
	PasswordHash string       `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// SubjectRef names a subject taught by a user.
type SubjectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubjectName refers to an existing subject by name in requests.
type SubjectName struct {
	Name string `json:"name" validate:"required"`
}

// RegisterInput is the body of a staff registration.
type RegisterInput struct {
	Email     string        `json:"email" validate:"required,email"`
	Password  string        `json:"password" validate:"required,min=6"`
	FirstName string        `json:"firstName" validate:"required"`
	LastName  string        `json:"lastName" validate:"required"`
	Role      *shared.Role  `json:"role" validate:"omitempty,oneof=ADMIN TEACHER"`
	ClassID   *int64        `json:"classId" validate:"omitempty,gt=0"`
	Subjects  []SubjectName `json:"subjects" validate:"omitempty,dive"`
}

// PatchInput changes selected fields of a user. Nil fields are left alone.
type PatchInput struct {
	Email     *string       `json:"email" validate:"omitempty,email"`
	Password  *string       `json:"password" validate:"omitempty,min=6"`
	FirstName *string       `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string       `json:"lastName" validate:"omitempty,min=1"`
	Role      *shared.Role  `json:"role" validate:"omitempty,oneof=ADMIN TEACHER"`
	ClassID   *int64        `json:"classId" validate:"omitempty,gt=0"`
	Subjects  []SubjectName `json:"subjects" validate:"omitempty,dive"`
}

// Empty reports whether no field was supplied.
func (p PatchInput) Empty() bool {
	return p.Email == nil && p.Password == nil && p.FirstName == nil && p.LastName == nil &&
		p.Role == nil && p.ClassID == nil && p.Subjects == nil
}

// NewUser is a fully resolved user ready for insertion.
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         shared.Role
	ClassID      *int64
	SubjectIDs   []int64
}

// Changes is a resolved patch. SubjectIDs replaces the subject list when non-nil.
type Changes struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Role         *shared.Role
	ClassID      *int64
	SubjectIDs   []int64
}
