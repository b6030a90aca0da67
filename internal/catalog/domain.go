// Package catalog manages the named reference data of a school: classes
// and subjects. Both share one shape and differ only in table and label.
package catalog

import "time"

// Kind selects the table an Entry lives in.
type Kind struct {
	Table string
	Label string
}

var (
	Classes  = Kind{Table: "classes", Label: "School class"}
	Subjects = Kind{Table: "subjects", Label: "Subject"}
)

// Entry is a class or a subject.
type Entry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input carries the name for create and rename.
type Input struct {
	Name string `json:"name" validate:"required,max=100"`
}
