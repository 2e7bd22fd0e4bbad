package schedule

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"lass/internal/config"
	"lass/internal/logging"
	"lass/internal/model"
	"lass/internal/timectx"
)

// BlockAnnotator assigns schedule blocks to timeslots.
type BlockAnnotator struct {
	cfg    config.BlockConfig
	names  []nameMatcher
	tc     *timectx.Context
	fold   cases.Caser
	logger *slog.Logger
}

type nameMatcher struct {
	pattern string
	re      *regexp.Regexp
	block   string
}

// NewBlockAnnotator compiles the name-block patterns in cfg.
func NewBlockAnnotator(cfg config.BlockConfig, tc *timectx.Context, logger *slog.Logger) (*BlockAnnotator, error) {
	fold := cases.Fold()
	names := make([]nameMatcher, 0, len(cfg.NameBlocks))
	for i, nb := range cfg.NameBlocks {
		re, err := regexp.Compile(globToRegexp(fold.String(nb.Pattern)))
		if err != nil {
			return nil, fmt.Errorf("name block %d pattern %q: %w", i, nb.Pattern, err)
		}
		names = append(names, nameMatcher{pattern: nb.Pattern, re: re, block: nb.Block})
	}
	return &BlockAnnotator{
		cfg:    cfg,
		names:  names,
		tc:     tc,
		fold:   fold,
		logger: logging.NewComponentLogger(logger, "blocks"),
	}, nil
}

// Annotate sets the Block of each timeslot. A matching name block wins over
// the range block active at the timeslot's start, and a name block with no
// block name leaves the timeslot without a block. Timeslots must be in
// non-decreasing start order.
func (a *BlockAnnotator) Annotate(slots []*model.Timeslot) {
	if len(slots) == 0 {
		return
	}

	cursor := newRangeCursor(RangeBlocks(a.cfg.RangeBlocks, a.tc.ScheduleDateOf(slots[0].Start), a.tc))
	defer cursor.stop()

	for _, slot := range slots {
		name := cursor.activeAt(slot.Start)
		if block, matched := a.NameBlock(slot.Title()); matched {
			name = block
		}
		slot.Block = a.Block(name)
	}
}

// NameBlock returns the block of the first name block whose pattern matches
// title, ignoring case. matched is false when no pattern matches; an empty
// block with matched true is an explicit exclusion.
func (a *BlockAnnotator) NameBlock(title string) (block string, matched bool) {
	folded := a.fold.String(title)
	for _, nm := range a.names {
		if nm.re.MatchString(folded) {
			return nm.block, true
		}
	}
	return "", false
}

// Block returns the display block for name, or nil for the empty name.
// Names missing from the block definitions get a block with no attributes.
func (a *BlockAnnotator) Block(name string) *model.Block {
	if name == "" {
		return nil
	}
	attrs, ok := a.cfg.Blocks[name]
	if !ok {
		logging.Event("block_undefined").Debug(a.logger, "block has no definition", logging.String("block", name))
	}
	return &model.Block{Name: name, Attrs: maps.Clone(attrs)}
}

// RangeBlocks yields (activation instant, block name) for every range block
// starting on date from, repeating the list one day later each time it is
// exhausted. The sequence is infinite unless blocks is empty.
func RangeBlocks(blocks []config.RangeBlock, from timectx.Date, tc *timectx.Context) iter.Seq2[time.Time, string] {
	return func(yield func(time.Time, string) bool) {
		if len(blocks) == 0 {
			return
		}
		for date := from; ; date = date.AddDays(1) {
			for _, rb := range blocks {
				if !yield(tc.CombineAsLocal(date, rb.Hour, rb.Minute), rb.Block) {
					return
				}
			}
		}
	}
}

// rangeCursor walks a range block sequence forward. It never rewinds.
type rangeCursor struct {
	next func() (time.Time, string, bool)
	stop func()

	current   string
	nextStart time.Time
	nextName  string
	more      bool
}

func newRangeCursor(seq iter.Seq2[time.Time, string]) *rangeCursor {
	next, stop := iter.Pull2(seq)
	c := &rangeCursor{next: next, stop: stop}
	c.nextStart, c.nextName, c.more = next()
	return c
}

// activeAt advances until the next boundary is after t and returns the block
// active at t. Before the first boundary no block is active.
func (c *rangeCursor) activeAt(t time.Time) string {
	for c.more && !c.nextStart.After(t) {
		c.current = c.nextName
		c.nextStart, c.nextName, c.more = c.next()
	}
	return c.current
}

// globToRegexp translates a shell glob into an anchored regular expression.
// '*' matches any run, '?' one character, and '[...]' a class that '!'
// negates. An unterminated '[' is literal.
func globToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString(`(?s)\A`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			j := i + 1
			if j < len(runes) && runes[j] == '!' {
				j++
			}
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				b.WriteString(`\[`)
				continue
			}
			class := runes[i+1 : j]
			b.WriteByte('[')
			if len(class) > 0 && class[0] == '!' {
				b.WriteByte('^')
				class = class[1:]
			}
			for _, c := range class {
				switch c {
				case '\\', '[', ']', '^':
					b.WriteByte('\\')
				}
				b.WriteRune(c)
			}
			b.WriteByte(']')
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`\z`)
	return b.String()
}
