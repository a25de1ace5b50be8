// Package event defines the structural Markdown events consumed by the
// renderer and a pull interface for reading them.
package event

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind is the kind of an event.
type Kind uint8

const (
	// KindStart opens a container identified by Tag.
	KindStart Kind = iota
	// KindEnd closes the innermost container with the same Tag.
	KindEnd
	KindText
	// KindCode is an inline code span.
	KindCode
	// KindHTML is raw inline or block HTML.
	KindHTML
	KindSoftBreak
	KindHardBreak
	KindRule
	// KindImage is a complete image; Text holds the alt text.
	KindImage
	// KindFootnoteRef references a footnote by Target label.
	KindFootnoteRef
	// KindTaskMarker precedes the content of a task list item.
	KindTaskMarker
)

var kindNames = [...]string{
	KindStart:       "Start",
	KindEnd:         "End",
	KindText:        "Text",
	KindCode:        "Code",
	KindHTML:        "Html",
	KindSoftBreak:   "SoftBreak",
	KindHardBreak:   "HardBreak",
	KindRule:        "Rule",
	KindImage:       "Image",
	KindFootnoteRef: "FootnoteReference",
	KindTaskMarker:  "TaskListMarker",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Tag identifies a container.
type Tag uint8

const (
	TagNone Tag = iota
	TagParagraph
	TagHeading
	TagBlockQuote
	TagCodeBlock
	TagList
	TagItem
	TagEmphasis
	TagStrong
	TagStrikethrough
	TagLink
	TagTable
	TagTableHead
	TagTableRow
	TagTableCell
	TagFootnoteDefinition
)

var tagNames = [...]string{
	TagNone:               "None",
	TagParagraph:          "Paragraph",
	TagHeading:            "Heading",
	TagBlockQuote:         "BlockQuote",
	TagCodeBlock:          "CodeBlock",
	TagList:               "List",
	TagItem:               "Item",
	TagEmphasis:           "Emphasis",
	TagStrong:             "Strong",
	TagStrikethrough:      "Strikethrough",
	TagLink:               "Link",
	TagTable:              "Table",
	TagTableHead:          "TableHead",
	TagTableRow:           "TableRow",
	TagTableCell:          "TableCell",
	TagFootnoteDefinition: "FootnoteDefinition",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// Inline reports whether the tag is an inline span rather than a block.
func (t Tag) Inline() bool {
	switch t {
	case TagEmphasis, TagStrong, TagStrikethrough, TagLink:
		return true
	}
	return false
}

// Alignment is a table column alignment.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	default:
		return "None"
	}
}

// Event is one structural unit of a Markdown document. Only the fields
// relevant to Kind and Tag are set.
type Event struct {
	Kind Kind
	Tag  Tag

	// Level is the heading level, 1 to 6.
	Level int
	// Ordered, Start and Tight describe a list. Start is the number of the
	// first item and is used as given; zero is a valid start, so producers
	// of ordered lists must set it (see OrderedList).
	Ordered bool
	Start   int
	Tight   bool
	// Language is the info string of a fenced code block.
	Language string
	Fenced   bool
	// Target is the link or image destination, or the footnote label.
	Target string
	Title  string
	// Autolink marks links whose text is the target itself.
	Autolink bool
	// Text is the literal content of text, code, HTML and image events.
	Text string
	// Checked is the state of a task marker.
	Checked bool
	// Align holds per-column alignment for TagTable starts.
	Align []Alignment
	// Header marks cells in the table head.
	Header bool
	// Block marks HTML events that stand for a whole block.
	Block bool
}

// Start returns a start event for tag.
func Start(tag Tag) Event { return Event{Kind: KindStart, Tag: tag} }

// End returns an end event for tag.
func End(tag Tag) Event { return Event{Kind: KindEnd, Tag: tag} }

// OrderedList returns a start event for an ordered list whose first item
// is numbered start.
func OrderedList(start int, tight bool) Event {
	return Event{Kind: KindStart, Tag: TagList, Ordered: true, Start: start, Tight: tight}
}

// Text returns a text event.
func Text(s string) Event { return Event{Kind: KindText, Text: s} }

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	switch e.Kind {
	case KindStart, KindEnd:
		b.WriteByte('(')
		b.WriteString(e.Tag.String())
		if e.Kind == KindStart {
			switch e.Tag {
			case TagHeading:
				fmt.Fprintf(&b, " level=%d", e.Level)
			case TagList:
				if e.Ordered {
					fmt.Fprintf(&b, " ordered start=%d", e.Start)
				}
				if e.Tight {
					b.WriteString(" tight")
				}
			case TagCodeBlock:
				if e.Language != "" {
					fmt.Fprintf(&b, " lang=%q", e.Language)
				}
			case TagLink:
				fmt.Fprintf(&b, " target=%q", e.Target)
				if e.Title != "" {
					fmt.Fprintf(&b, " title=%q", e.Title)
				}
				if e.Autolink {
					b.WriteString(" autolink")
				}
			case TagTable:
				fmt.Fprintf(&b, " align=%v", e.Align)
			case TagFootnoteDefinition:
				fmt.Fprintf(&b, " label=%q", e.Target)
			}
		}
		b.WriteByte(')')
	case KindText, KindCode, KindHTML:
		fmt.Fprintf(&b, "(%q)", e.Text)
	case KindImage:
		fmt.Fprintf(&b, "(target=%q alt=%q)", e.Target, e.Text)
	case KindFootnoteRef:
		fmt.Fprintf(&b, "(%q)", e.Target)
	case KindTaskMarker:
		fmt.Fprintf(&b, "(%t)", e.Checked)
	}
	return b.String()
}

// Reader is a finite, single pass source of events. Next returns io.EOF
// after the last event.
type Reader interface {
	Next() (Event, error)
}

// Slice reads events from a slice.
type Slice struct {
	events []Event
	pos    int
}

// NewSlice returns a Reader over events.
func NewSlice(events ...Event) *Slice {
	return &Slice{events: events}
}

func (s *Slice) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

// Collect drains r into a slice.
func Collect(r Reader) ([]Event, error) {
	var out []Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
}
