package model

import (
	"strings"
	"time"
)

// ShowType classifies shows and controls how their timeslots are presented.
type ShowType struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Public         bool   `json:"public"`
	HasShowDBEntry bool   `json:"has_showdb_entry"`
	Collapsible    bool   `json:"collapsible"`
	CanBeMessaged  bool   `json:"can_be_messaged"`
}

// Show is a programme that runs over one or more seasons.
type Show struct {
	ID   int64    `json:"id"`
	Type ShowType `json:"type"`
	Ownership
}

func (s Show) SubjectKind() Kind { return KindShow }
func (s Show) SubjectID() int64  { return s.ID }

// Season is a run of a show within a term.
type Season struct {
	ID     int64 `json:"id"`
	ShowID int64 `json:"show_id"`
	TermID int64 `json:"term_id,omitempty"`
	Ownership
}

func (s Season) SubjectKind() Kind { return KindSeason }
func (s Season) SubjectID() int64  { return s.ID }

// Term is a period of the academic calendar.
type Term struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Start  time.Time `json:"start"`
	Finish time.Time `json:"finish"`
}

// IsSummer reports whether the term is the summer term.
func (t Term) IsSummer() bool {
	return strings.EqualFold(strings.TrimSpace(t.Name), "summer")
}

// Block is a named display category assigned to a timeslot.
type Block struct {
	Name  string            `json:"name"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Timeslot is one scheduled broadcast of a show, or a synthetic filler slot
// covering a gap. Schedule assembly annotates timeslots in place.
type Timeslot struct {
	ID       int64         `json:"id,omitempty"`
	SeasonID int64         `json:"season_id,omitempty"`
	ShowID   int64         `json:"show_id,omitempty"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`

	Filler      bool `json:"filler"`
	Collapsible bool `json:"collapsible"`

	Text    Values        `json:"text,omitempty"`
	Image   Values        `json:"image,omitempty"`
	Credits CreditsByType `json:"credits,omitempty"`
	Byline  []Credited    `json:"byline,omitempty"`
	Block   *Block        `json:"block"`
}

func (t *Timeslot) SubjectKind() Kind { return KindTimeslot }
func (t *Timeslot) SubjectID() int64  { return t.ID }

// Finish returns the instant the timeslot ends.
func (t *Timeslot) Finish() time.Time {
	return t.Start.Add(t.Duration)
}

// ShowRef returns a reference to the timeslot's parent show.
func (t *Timeslot) ShowRef() Ref {
	return Ref{Kind: KindShow, ID: t.ShowID}
}

// Title returns the timeslot's resolved title, if any.
func (t *Timeslot) Title() string {
	return t.Text.Get("title")
}

// Metadata returns the values resolved for strand.
func (t *Timeslot) Metadata(strand string) Values {
	switch strand {
	case StrandText:
		return t.Text
	case StrandImage:
		return t.Image
	default:
		return nil
	}
}

// AppendMetadata appends values to strand, creating the map when needed.
// Existing values stay first.
func (t *Timeslot) AppendMetadata(strand string, values Values) {
	if len(values) == 0 {
		return
	}
	target := t.Metadata(strand)
	if target == nil {
		target = Values{}
		switch strand {
		case StrandText:
			t.Text = target
		case StrandImage:
			t.Image = target
		default:
			return
		}
	}
	for key, vs := range values {
		target[key] = append(target[key], vs...)
	}
}
