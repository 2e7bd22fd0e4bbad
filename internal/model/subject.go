package model

import (
	"fmt"
	"slices"
)

// Kind names a concrete subject type.
type Kind string

const (
	KindShow     Kind = "show"
	KindSeason   Kind = "season"
	KindTimeslot Kind = "timeslot"
	KindPodcast  Kind = "podcast"
	KindPackage  Kind = "package"
)

// Metadata strands.
const (
	StrandText  = "text"
	StrandImage = "image"
)

// Subject is anything that can carry metadata or credits. Identity is the
// pair (kind, id); ids are only unique within a kind.
type Subject interface {
	SubjectKind() Kind
	SubjectID() int64
}

// Ref is a bare subject reference.
type Ref struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

func (r Ref) SubjectKind() Kind { return r.Kind }
func (r Ref) SubjectID() int64  { return r.ID }

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// RefOf returns the bare reference for s.
func RefOf(s Subject) Ref {
	return Ref{Kind: s.SubjectKind(), ID: s.SubjectID()}
}

// Capability declares what a subject kind supports.
type Capability struct {
	// Strands lists the metadata strands the kind carries.
	Strands []string
	// Packages reports whether package defaults apply to the kind.
	Packages bool
	// Credits reports whether people can be credited on the kind.
	Credits bool
}

// HasStrand reports whether strand is one of the kind's strands.
func (c Capability) HasStrand(strand string) bool {
	return slices.Contains(c.Strands, strand)
}

var capabilities = map[Kind]Capability{
	KindShow:     {Strands: []string{StrandText, StrandImage}, Packages: true, Credits: true},
	KindSeason:   {Strands: []string{StrandText, StrandImage}, Packages: true, Credits: true},
	KindTimeslot: {Strands: []string{StrandText, StrandImage}, Packages: true, Credits: true},
	KindPodcast:  {Strands: []string{StrandText, StrandImage}, Packages: true, Credits: true},
	KindPackage:  {Strands: []string{StrandText, StrandImage}},
}

// Capabilities returns what kind supports. Unknown kinds report ok=false.
func Capabilities(kind Kind) (Capability, bool) {
	c, ok := capabilities[kind]
	return c, ok
}

// ParseKind validates a subject kind name.
func ParseKind(value string) (Kind, error) {
	kind := Kind(value)
	if _, ok := capabilities[kind]; !ok {
		return "", fmt.Errorf("unknown subject kind %q", value)
	}
	return kind, nil
}

// Kinds returns every known subject kind.
func Kinds() []Kind {
	return []Kind{KindShow, KindSeason, KindTimeslot, KindPodcast, KindPackage}
}
