// Package markdown adapts the goldmark parser to the event.Reader pull
// interface.
package markdown

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"pkt.systems/mdtty/event"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote))

// Parse parses a complete document and returns a reader over its events.
func Parse(source []byte) *Reader {
	doc := md.Parser().Parse(text.NewReader(source))
	return &Reader{source: source, doc: doc}
}

// Reader walks a goldmark AST and produces events lazily. The walk keeps
// only the current node and direction, so no stack grows with nesting.
type Reader struct {
	source   []byte
	doc      gmast.Node
	node     gmast.Node
	entering bool
	skip     bool
	done     bool
	queue    []event.Event
	queueArr [4]event.Event
}

// Next implements event.Reader.
func (r *Reader) Next() (event.Event, error) {
	for len(r.queue) == 0 {
		if r.done || !r.step() {
			r.done = true
			return event.Event{}, io.EOF
		}
		r.visit()
	}
	ev := r.queue[0]
	r.queue = r.queue[1:]
	return ev, nil
}

func (r *Reader) step() bool {
	if r.node == nil {
		r.node = r.doc
		r.entering = true
		return r.node != nil
	}
	if r.entering {
		skip := r.skip
		r.skip = false
		if !skip {
			if child := r.node.FirstChild(); child != nil {
				r.node = child
				return true
			}
		}
		r.entering = false
		return true
	}
	if r.node == r.doc {
		return false
	}
	if next := r.node.NextSibling(); next != nil {
		r.node = next
		r.entering = true
		return true
	}
	r.node = r.node.Parent()
	return r.node != nil
}

func (r *Reader) emit(evs ...event.Event) {
	if r.queue == nil || len(r.queue) == 0 {
		r.queue = r.queueArr[:0]
	}
	r.queue = append(r.queue, evs...)
}

func (r *Reader) visit() {
	if r.entering {
		r.enter(r.node)
		return
	}
	r.exit(r.node)
}

func (r *Reader) enter(n gmast.Node) {
	switch n := n.(type) {
	case *gmast.Paragraph:
		r.emit(event.Start(event.TagParagraph))
	case *gmast.Heading:
		r.emit(event.Event{Kind: event.KindStart, Tag: event.TagHeading, Level: n.Level})
	case *gmast.ThematicBreak:
		r.emit(event.Event{Kind: event.KindRule})
	case *gmast.FencedCodeBlock:
		lang := ""
		if n.Info != nil {
			lang = string(n.Info.Segment.Value(r.source))
		}
		r.codeBlock(n, lang, true)
	case *gmast.CodeBlock:
		r.codeBlock(n, "", false)
	case *gmast.Blockquote:
		r.emit(event.Start(event.TagBlockQuote))
	case *gmast.List:
		ev := event.Event{Kind: event.KindStart, Tag: event.TagList, Ordered: n.IsOrdered(), Tight: n.IsTight}
		if ev.Ordered {
			ev.Start = n.Start
		}
		r.emit(ev)
	case *gmast.ListItem:
		r.emit(event.Start(event.TagItem))
	case *gmast.HTMLBlock:
		var b bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(r.source))
		}
		if n.HasClosure() {
			b.Write(n.ClosureLine.Value(r.source))
		}
		r.emit(event.Event{Kind: event.KindHTML, Text: b.String(), Block: true})
	case *gmast.Text:
		value := r.textValue(n)
		if n.HardLineBreak() {
			value = strings.TrimRight(value, " \t")
		}
		if value != "" {
			r.emit(event.Text(value))
		}
		switch {
		case n.HardLineBreak():
			r.emit(event.Event{Kind: event.KindHardBreak})
		case n.SoftLineBreak():
			r.emit(event.Event{Kind: event.KindSoftBreak})
		}
	case *gmast.String:
		if len(n.Value) > 0 {
			r.emit(event.Text(string(n.Value)))
		}
	case *gmast.CodeSpan:
		r.skip = true
		r.emit(event.Event{Kind: event.KindCode, Text: strings.ReplaceAll(r.plainText(n), "\n", " ")})
	case *gmast.Emphasis:
		r.emit(event.Start(emphasisTag(n)))
	case *gmast.Link:
		r.emit(event.Event{Kind: event.KindStart, Tag: event.TagLink, Target: string(n.Destination), Title: string(n.Title)})
	case *gmast.AutoLink:
		url := string(n.URL(r.source))
		r.emit(
			event.Event{Kind: event.KindStart, Tag: event.TagLink, Target: url, Autolink: true},
			event.Text(string(n.Label(r.source))),
			event.End(event.TagLink),
		)
	case *gmast.Image:
		r.skip = true
		r.emit(event.Event{Kind: event.KindImage, Target: string(n.Destination), Title: string(n.Title), Text: r.plainText(n)})
	case *gmast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(r.source))
		}
		r.emit(event.Event{Kind: event.KindHTML, Text: b.String()})
	case *east.Strikethrough:
		r.emit(event.Start(event.TagStrikethrough))
	case *east.TaskCheckBox:
		r.emit(event.Event{Kind: event.KindTaskMarker, Checked: n.IsChecked})
	case *east.Table:
		align := make([]event.Alignment, len(n.Alignments))
		for i, a := range n.Alignments {
			align[i] = alignment(a)
		}
		r.emit(event.Event{Kind: event.KindStart, Tag: event.TagTable, Align: align})
	case *east.TableHeader:
		r.emit(event.Start(event.TagTableHead))
	case *east.TableRow:
		r.emit(event.Start(event.TagTableRow))
	case *east.TableCell:
		_, header := n.Parent().(*east.TableHeader)
		r.emit(event.Event{Kind: event.KindStart, Tag: event.TagTableCell, Header: header})
	case *east.FootnoteLink:
		r.emit(event.Event{Kind: event.KindFootnoteRef, Target: strconv.Itoa(n.Index)})
	case *east.FootnoteBacklink:
		r.skip = true
	case *east.Footnote:
		r.emit(event.Event{Kind: event.KindStart, Tag: event.TagFootnoteDefinition, Target: strconv.Itoa(n.Index)})
	}
}

func (r *Reader) exit(n gmast.Node) {
	switch n := n.(type) {
	case *gmast.Paragraph:
		r.emit(event.End(event.TagParagraph))
	case *gmast.Heading:
		r.emit(event.End(event.TagHeading))
	case *gmast.Blockquote:
		r.emit(event.End(event.TagBlockQuote))
	case *gmast.List:
		r.emit(event.End(event.TagList))
	case *gmast.ListItem:
		r.emit(event.End(event.TagItem))
	case *gmast.Emphasis:
		r.emit(event.End(emphasisTag(n)))
	case *gmast.Link:
		r.emit(event.End(event.TagLink))
	case *east.Strikethrough:
		r.emit(event.End(event.TagStrikethrough))
	case *east.Table:
		r.emit(event.End(event.TagTable))
	case *east.TableHeader:
		r.emit(event.End(event.TagTableHead))
	case *east.TableRow:
		r.emit(event.End(event.TagTableRow))
	case *east.TableCell:
		r.emit(event.End(event.TagTableCell))
	case *east.Footnote:
		r.emit(event.End(event.TagFootnoteDefinition))
	}
}

func (r *Reader) codeBlock(n gmast.Node, info string, fenced bool) {
	r.skip = true
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(r.source))
	}
	r.emit(event.Event{Kind: event.KindStart, Tag: event.TagCodeBlock, Language: strings.TrimSpace(info), Fenced: fenced})
	if b.Len() > 0 {
		r.emit(event.Text(b.String()))
	}
	r.emit(event.End(event.TagCodeBlock))
}

// plainText flattens the inline children of n, as used for image alt text
// and code spans.
func (r *Reader) plainText(n gmast.Node) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *gmast.Text:
			b.WriteString(r.textValue(c))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(c.Value)
		case *gmast.AutoLink:
			b.Write(c.Label(r.source))
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}

// textValue returns the text of n with backslash escapes and character
// references resolved. Raw text, as inside code spans, is returned as is.
func (r *Reader) textValue(n *gmast.Text) string {
	value := n.Segment.Value(r.source)
	if n.IsRaw() {
		return string(value)
	}
	return string(util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(value))))
}

func emphasisTag(n *gmast.Emphasis) event.Tag {
	if n.Level >= 2 {
		return event.TagStrong
	}
	return event.TagEmphasis
}

func alignment(a east.Alignment) event.Alignment {
	switch a {
	case east.AlignLeft:
		return event.AlignLeft
	case east.AlignCenter:
		return event.AlignCenter
	case east.AlignRight:
		return event.AlignRight
	default:
		return event.AlignNone
	}
}
