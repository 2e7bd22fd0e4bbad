package model

import (
	"time"

	"lass/internal/transient"
)

// Key defines a metadata slot.
type Key struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Plural        string        `json:"plural,omitempty"`
	AllowMultiple bool          `json:"allow_multiple"`
	Searchable    bool          `json:"searchable"`
	CacheDuration time.Duration `json:"cache_duration"`
}

// Item is one versioned assertion of a key's value for a subject.
type Item struct {
	ID      int64  `json:"id"`
	Subject Ref    `json:"subject"`
	Strand  string `json:"strand"`
	Key     string `json:"key"`
	Value   string `json:"value"`
	transient.Span
	Ownership
	Approval
}

// Package is a named bundle of default metadata.
type Package struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Weight      int    `json:"weight"`
	transient.Span
}

// PackageEntry attaches a package to a subject for a period.
type PackageEntry struct {
	Subject   Ref   `json:"subject"`
	PackageID int64 `json:"package_id"`
	transient.Span
}

// Metadata source priorities. Lower numbers win.
const (
	PriorityOwn     = 0
	PriorityPackage = 1
)

// MetadataRow is a candidate value for a subject's key, drawn either from the
// subject's own items or from a package attached to it.
type MetadataRow struct {
	SubjectID     int64
	Key           string
	Value         string
	Priority      int
	AllowMultiple bool
	Span          transient.Span
}

// Values maps metadata keys to their resolved values in priority order.
type Values map[string][]string

// First returns the first value for key.
func (v Values) First(key string) (string, bool) {
	values := v[key]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Get returns the first value for key or the empty string.
func (v Values) Get(key string) string {
	value, _ := v.First(key)
	return value
}

// Ownership records who created a record and when.
type Ownership struct {
	CreatorID int64     `json:"creator_id,omitempty"`
	Submitted time.Time `json:"submitted,omitzero"`
}

// Approval records who approved a record, if anyone.
type Approval struct {
	ApproverID int64 `json:"approver_id,omitempty"`
}

// Approved reports whether the record has an approver.
func (a Approval) Approved() bool {
	return a.ApproverID != 0
}
