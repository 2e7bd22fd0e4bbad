package model

import (
	"strings"

	"lass/internal/transient"
)

// CreditType is the role a person is credited with.
type CreditType struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Plural   string `json:"plural"`
	InByline bool   `json:"in_byline"`
}

// Person is someone who can be credited.
type Person struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName joins the person's first and last names.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Credit associates a person with a subject in a role for a period.
type Credit struct {
	ID      int64  `json:"id"`
	Subject Ref    `json:"subject"`
	Person  Person `json:"person"`
	Type    string `json:"type"`
	transient.Span
	Ownership
	Approval
}

// CreditRow is a credit joined with its person and type, as read from storage.
type CreditRow struct {
	SubjectID int64
	Type      string
	Plural    string
	InByline  bool
	Person    Person
	Span      transient.Span
}

// Credited describes a credited person on a resolved subject.
type Credited struct {
	Person   Person `json:"person"`
	Type     string `json:"type"`
	Plural   string `json:"plural,omitempty"`
	InByline bool   `json:"in_byline"`
}

// CreditsByType maps credit type names to the people credited in that role,
// ordered by last then first name.
type CreditsByType map[string][]Credited
