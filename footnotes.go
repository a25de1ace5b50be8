package mdtty

import (
	"strconv"
	"strings"

	"pkt.systems/mdtty/event"
)

// footnotes numbers labels at their first reference and holds the captured
// definitions until the end of the document.
type footnotes struct {
	numbers  map[string]int
	order    []string
	defs     map[string][]event.Event
	defOrder []string
	done     map[string]bool
}

func (f *footnotes) init() {
	f.numbers = make(map[string]int)
	f.defs = make(map[string][]event.Event)
	f.done = make(map[string]bool)
}

func (f *footnotes) number(label string) int {
	if n, ok := f.numbers[label]; ok {
		return n
	}
	f.order = append(f.order, label)
	n := len(f.order)
	f.numbers[label] = n
	return n
}

// define stores a definition. The first definition of a label wins.
func (f *footnotes) define(label string, events []event.Event) {
	if _, dup := f.defs[label]; dup {
		return
	}
	f.defs[label] = events
	f.defOrder = append(f.defOrder, label)
}

func (f *footnotes) nextUnreferenced() (string, bool) {
	for _, label := range f.defOrder {
		if _, ok := f.numbers[label]; !ok {
			return label, true
		}
	}
	return "", false
}

func (e *engine) captureEvent(ev event.Event) {
	c := e.capture
	if ev.Tag == event.TagFootnoteDefinition {
		switch ev.Kind {
		case event.KindStart:
			c.depth++
		case event.KindEnd:
			c.depth--
		}
	}
	if c.depth == 0 {
		e.capture = nil
		e.notes.define(c.label, c.events)
		return
	}
	c.events = append(c.events, ev)
}

// flushFootnotes renders definitions in the order of their first reference.
// References made inside definitions number further notes; a definition
// already rendered is never rendered again, so reference cycles end.
// Unreferenced definitions follow in definition order.
func (e *engine) flushFootnotes() error {
	for i := 0; ; i++ {
		if i == len(e.notes.order) {
			label, ok := e.notes.nextUnreferenced()
			if !ok {
				return nil
			}
			e.notes.number(label)
		}
		label := e.notes.order[i]
		evs, ok := e.notes.defs[label]
		if !ok || e.notes.done[label] {
			continue
		}
		e.notes.done[label] = true
		if err := e.footnote(e.notes.numbers[label], evs); err != nil {
			return err
		}
	}
}

func (e *engine) footnote(n int, evs []event.Event) error {
	e.beginBlock()
	marker := "[^" + strconv.Itoa(n) + "]: "
	e.w.PushPrefix(marker, strings.Repeat(" ", len(marker)), e.styleSGR(e.styles.FootnoteMarker))
	f := &frame{tag: event.TagFootnoteDefinition, prefix: true}
	e.push(f)
	for _, ev := range evs {
		if err := e.handle(ev); err != nil {
			return err
		}
		if err := e.w.Err(); err != nil {
			return err
		}
	}
	if e.capture != nil {
		return &StackError{AtEOF: true, Open: event.TagFootnoteDefinition, Reason: "unterminated footnote definition"}
	}
	if e.top() != f {
		return &StackError{AtEOF: true, Open: e.openTag(), Reason: "footnote definition left containers open"}
	}
	if e.w.PrefixPending() {
		e.w.StartLine()
	}
	e.w.EndLine()
	e.pop()
	e.margin = true
	return e.w.Flush()
}
