// Package knowledgetests manages tests, the ownable resource created by
// staff. The creating staff member is the owner.
package knowledgetests

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
)

// Category classifies a test.
type Category string

const (
	CategoryQuiz       Category = "QUIZ"
	CategoryClassTest  Category = "CLASS_TEST"
	CategoryHomework   Category = "HOMEWORK"
	CategoryOralAnswer Category = "ORAL_ANSWER"
	CategoryClasswork  Category = "CLASSWORK"
	CategoryOther      Category = "OTHER"
)

// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
var ErrInvalidDate = shared.NewError(shared.ErrBadRequest, "Invalid date format. Expected format is YYYY-MM-DD.")

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date from its calendar parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON encodes the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// UnmarshalJSON decodes YYYY-MM-DD.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return ErrInvalidDate
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return ErrInvalidDate
	}
	d.Time = t
	return nil
}

// Test is a graded piece of work scheduled for a class.
type Test struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	TestDate  Date      `json:"testDate"`
	ClassID   int64     `json:"classId"`
	SubjectID int64     `json:"subjectId"`
	TeacherID int64     `json:"teacherId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Owner returns the staff member allowed to mutate the test.
func (t Test) Owner() rbac.Owner {
	return rbac.StaffOwner(t.TeacherID)
}

// CreateInput is the body of a test creation. The owner is the caller.
type CreateInput struct {
	Name      string   `json:"name" validate:"required,max=200"`
	Category  Category `json:"category" validate:"required,oneof=QUIZ CLASS_TEST HOMEWORK ORAL_ANSWER CLASSWORK OTHER"`
	TestDate  Date     `json:"testDate" validate:"required"`
	ClassID   int64    `json:"classId" validate:"required,gt=0"`
	SubjectID int64    `json:"subjectId" validate:"required,gt=0"`
}

// PatchInput changes selected fields of a test. TeacherID hands the test
// over to another staff member.
type PatchInput struct {
	Name      *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Category  *Category `json:"category" validate:"omitempty,oneof=QUIZ CLASS_TEST HOMEWORK ORAL_ANSWER CLASSWORK OTHER"`
	TestDate  *Date     `json:"testDate"`
	ClassID   *int64    `json:"classId" validate:"omitempty,gt=0"`
	SubjectID *int64    `json:"subjectId" validate:"omitempty,gt=0"`
	TeacherID *int64    `json:"teacherId" validate:"omitempty,gt=0"`
}

// Empty reports whether no field was supplied.
func (p PatchInput) Empty() bool {
	return p.Name == nil && p.Category == nil && p.TestDate == nil &&
		p.ClassID == nil && p.SubjectID == nil && p.TeacherID == nil
}
