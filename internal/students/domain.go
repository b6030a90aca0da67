// Package students manages the learner directory.
package students

import "time"

// Student is a learner. Learners always act with the STUDENT role.
type Student struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	ClassID      *int64    `json:"classId,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RegisterInput is the body of a learner registration.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	ClassID   *int64 `json:"classId" validate:"omitempty,gt=0"`
}

// PatchInput changes selected fields of a student.
type PatchInput struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=6"`
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1"`
	ClassID   *int64  `json:"classId" validate:"omitempty,gt=0"`
}

// Empty reports whether no field was supplied.
func (p PatchInput) Empty() bool {
	return p.Email == nil && p.Password == nil && p.FirstName == nil && p.LastName == nil && p.ClassID == nil
}

// Changes is a resolved patch ready for persistence.
type Changes struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	ClassID      *int64
}
