// Package grades manages grades. A grade has no owner of its own: it is
// owned by whoever owns the test it belongs to.
package grades

import (
	"time"

	"github.com/gradebook/gradebook/internal/shared"
)

const (
	MinValue = 1.0
	MaxValue = 6.0
)

// Grade is a mark a student received for a test.
type Grade struct {
	ID          int64     `json:"id"`
	Grade       float64   `json:"grade"`
	Description *string   `json:"description,omitempty"`
	StudentID   int64     `json:"studentId"`
	TestID      int64     `json:"testId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput is the body of a grade creation.
type CreateInput struct {
	Grade       float64 `json:"grade" validate:"required"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	StudentID   int64   `json:"studentId" validate:"required,gt=0"`
	TestID      int64   `json:"testId" validate:"required,gt=0"`
}

// PatchInput changes selected fields of a grade.
type PatchInput struct {
	Grade       *float64 `json:"grade"`
	Description *string  `json:"description" validate:"omitempty,max=255"`
	StudentID   *int64   `json:"studentId" validate:"omitempty,gt=0"`
	TestID      *int64   `json:"testId" validate:"omitempty,gt=0"`
}

// Empty reports whether no field was supplied.
func (p PatchInput) Empty() bool {
	return p.Grade == nil && p.Description == nil && p.StudentID == nil && p.TestID == nil
}

// CheckValue enforces the grading scale.
func CheckValue(v float64) error {
	switch {
	case v < MinValue:
		return shared.BadRequestf("The lowest grade value is 1.0")
	case v > MaxValue:
		return shared.BadRequestf("The highest grade value is 6.0")
	}
	return nil
}
