package mdtty

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pkt.systems/pslog"

	"pkt.systems/mdtty/event"
	"pkt.systems/mdtty/highlight"
	"pkt.systems/mdtty/imgproto"
	"pkt.systems/mdtty/termcap"
)

var bullets = [...]string{"•", "◦", "▪"}

// frame is one open container on the context stack. Block frames may push a
// line prefix, and any frame may layer a style over the text inside it.
type frame struct {
	tag event.Tag

	prefix bool
	styled bool
	style  Style

	ordered bool
	next    int
	tight   bool

	target   string
	title    string
	href     string
	autolink bool
	text     strings.Builder
}

type codeBlock struct {
	lang   string
	fenced bool
	text   strings.Builder
}

type linkRef struct {
	n      int
	target string
	title  string
}

type capture struct {
	label  string
	depth  int
	events []event.Event
}

// engine turns events into terminal output. It owns the context stack and
// the style overlay; the Writer owns columns and prefixes.
type engine struct {
	ctx      context.Context
	w        *Writer
	caps     termcap.Capabilities
	styles   Styles
	cfg      renderConfig
	base     linkBase
	resolver ImageResolver
	hl       *highlight.Highlighter
	log      pslog.Logger

	stack []*frame

	attrs [numAttrs]int
	fgs   []Color
	sgr   string
	dirty bool

	margin  bool
	code    *codeBlock
	table   *table
	refs    []linkRef
	nextRef int
	notes   footnotes
	capture *capture

	codeSGR  [highlight.NumClasses]string
	warnings []Warning
}

func newEngine(ctx context.Context, req RenderRequest, w *Writer) *engine {
	th := req.Theme
	if th == nil {
		th = DefaultTheme()
	}
	hl := req.Highlighter
	if hl == nil {
		hl = highlight.Default()
	}
	e := &engine{
		ctx:      ctx,
		w:        w,
		caps:     req.Capabilities,
		styles:   th.Styles(),
		cfg:      buildConfig(req.Options),
		base:     newLinkBase(req.Base),
		resolver: req.Resolver,
		hl:       hl,
		log:      pslog.Ctx(ctx),
		dirty:    true,
		nextRef:  1,
	}
	e.notes.init()
	code := e.styles.Text.Merge(e.styles.CodeBlock)
	for c := range e.codeSGR {
		e.codeSGR[c] = code.Merge(e.styles.Syntax[c]).SGR(e.caps.Colors)
	}
	e.applyStyle(e.styles.Text, 1)
	return e
}

func (e *engine) run(events event.Reader) error {
	for {
		ev, err := events.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return e.fail(fmt.Errorf("read events: %w", err))
		}
		if err := e.handle(ev); err != nil {
			return e.fail(err)
		}
		if err := e.w.Err(); err != nil {
			return e.fail(err)
		}
	}
	if err := e.checkClosed(); err != nil {
		return e.fail(err)
	}
	e.flushLinkRefs()
	if err := e.flushFootnotes(); err != nil {
		return e.fail(err)
	}
	if err := e.w.Finish(); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

func (e *engine) fail(err error) error {
	e.log.Debug("render stopped", "err", err)
	_ = e.w.Abort()
	return &RenderError{Err: err}
}

func (e *engine) checkClosed() error {
	if e.capture != nil {
		return &StackError{AtEOF: true, Open: event.TagFootnoteDefinition, Reason: "unterminated footnote definition"}
	}
	if len(e.stack) > 0 {
		return &StackError{AtEOF: true, Open: e.openTag(), Reason: "containers left open"}
	}
	return nil
}

func (e *engine) handle(ev event.Event) error {
	if e.capture != nil {
		e.captureEvent(ev)
		return nil
	}
	switch ev.Kind {
	case event.KindStart:
		return e.start(ev)
	case event.KindEnd:
		return e.end(ev)
	case event.KindText:
		if e.code != nil {
			e.code.text.WriteString(ev.Text)
			return nil
		}
		if err := e.requireInline(ev); err != nil {
			return err
		}
		e.inline(ev.Text)
	case event.KindCode:
		if err := e.requireInline(ev); err != nil {
			return err
		}
		e.styled(e.styles.CodeInline, ev.Text)
	case event.KindHTML:
		if ev.Block {
			return e.htmlBlock(ev)
		}
		if err := e.requireInline(ev); err != nil {
			return err
		}
		e.htmlInline(ev.Text)
	case event.KindSoftBreak:
		if err := e.requireInline(ev); err != nil {
			return err
		}
		e.inline(" ")
	case event.KindHardBreak:
		if err := e.requireInline(ev); err != nil {
			return err
		}
		e.hardBreak()
	case event.KindRule:
		if err := e.requireBlock(ev); err != nil {
			return err
		}
		e.rule()
	case event.KindImage:
		if err := e.requireInline(ev); err != nil {
			return err
		}
		e.image(ev.Target, ev.Text)
	case event.KindFootnoteRef:
		if err := e.requireInline(ev); err != nil {
			return err
		}
		e.styled(e.styles.FootnoteMarker, "[^"+strconv.Itoa(e.notes.number(ev.Target))+"]")
	case event.KindTaskMarker:
		if err := e.requireInline(ev); err != nil {
			return err
		}
		marker := "☐ "
		if ev.Checked {
			marker = "☑ "
		}
		e.styled(e.styles.ListMarker, marker)
	default:
		return e.stackError(ev, "unknown event kind")
	}
	return nil
}

func (e *engine) start(ev event.Event) error {
	switch ev.Tag {
	case event.TagParagraph:
		if err := e.requireBlock(ev); err != nil {
			return err
		}
		e.beginBlock()
		e.push(&frame{tag: ev.Tag})
	case event.TagHeading:
		if err := e.requireBlock(ev); err != nil {
			return err
		}
		e.heading(ev)
	case event.TagBlockQuote:
		if err := e.requireBlock(ev); err != nil {
			return err
		}
		e.beginBlock()
		e.w.PushPrefix("┃ ", "┃ ", e.styleSGR(e.styles.QuoteMarker))
		e.push(&frame{tag: ev.Tag, prefix: true, styled: true, style: e.styles.Quote})
	case event.TagCodeBlock:
		if err := e.requireBlock(ev); err != nil {
			return err
		}
		e.beginBlock()
		e.code = &codeBlock{lang: ev.Language, fenced: ev.Fenced}
		e.push(&frame{tag: ev.Tag})
	case event.TagList:
		if err := e.requireBlock(ev); err != nil {
			return err
		}
		e.beginBlock()
		e.push(&frame{tag: ev.Tag, ordered: ev.Ordered, next: ev.Start, tight: ev.Tight})
	case event.TagItem:
		list := e.top()
		if list == nil || list.tag != event.TagList {
			return e.stackError(ev, "list item outside a list")
		}
		e.item(list)
	case event.TagTable:
		if err := e.requireBlock(ev); err != nil {
			return err
		}
		e.beginBlock()
		e.table = newTable(ev.Align)
		e.push(&frame{tag: ev.Tag})
	case event.TagTableHead, event.TagTableRow:
		f := e.top()
		switch {
		case f != nil && f.tag == event.TagTable:
			e.table.startRow(ev.Tag == event.TagTableHead)
		case f != nil && f.tag == event.TagTableHead && ev.Tag == event.TagTableRow:
			// A head may wrap its cells in a row of its own.
		default:
			return e.stackError(ev, "table row outside a table")
		}
		e.push(&frame{tag: ev.Tag})
	case event.TagTableCell:
		f := e.top()
		if f == nil || (f.tag != event.TagTableHead && f.tag != event.TagTableRow) {
			return e.stackError(ev, "table cell outside a row")
		}
		header := ev.Header || e.innermost(event.TagTableHead) != nil
		e.table.startCell()
		e.push(&frame{tag: ev.Tag, styled: header, style: e.styles.TableHeader})
	case event.TagFootnoteDefinition:
		if err := e.requireBlock(ev); err != nil {
			return err
		}
		e.capture = &capture{label: ev.Target, depth: 1}
	case event.TagEmphasis, event.TagStrong, event.TagStrikethrough:
		if err := e.requireInline(ev); err != nil {
			return err
		}
		e.push(&frame{tag: ev.Tag, styled: true, style: e.spanStyle(ev.Tag)})
	case event.TagLink:
		if err := e.requireInline(ev); err != nil {
			return err
		}
		f := &frame{tag: ev.Tag, styled: true, style: e.styles.LinkText, target: ev.Target, title: ev.Title, autolink: ev.Autolink}
		if e.caps.Hyperlinks {
			if href, ok := e.base.hyperlink(ev.Target); ok {
				f.href = sanitizeText(href)
			}
		}
		e.push(f)
	default:
		return e.stackError(ev, "unknown container")
	}
	return nil
}

func (e *engine) end(ev event.Event) error {
	f := e.top()
	if f == nil {
		return e.stackError(ev, "end without start")
	}
	if f.tag != ev.Tag {
		return e.stackError(ev, "end does not match the innermost container")
	}
	switch ev.Tag {
	case event.TagParagraph, event.TagList:
		e.w.EndLine()
		e.margin = true
	case event.TagHeading, event.TagBlockQuote:
		e.w.EndLine()
		e.margin = true
	case event.TagItem:
		if e.w.PrefixPending() {
			e.w.StartLine()
		}
		e.w.EndLine()
	case event.TagCodeBlock:
		code := e.code
		e.code = nil
		e.flushCode(code)
		e.margin = true
	case event.TagTable:
		t := e.table
		e.table = nil
		e.flushTable(t)
		e.margin = true
	case event.TagTableHead, event.TagTableRow:
		e.table.endRow()
	case event.TagTableCell:
		e.table.endCell()
	}
	e.pop()
	if ev.Tag == event.TagLink {
		e.endLink(f)
	}
	if len(e.stack) == 0 {
		_ = e.w.Flush()
	}
	return nil
}

func (e *engine) heading(ev event.Event) {
	if len(e.stack) == 0 {
		e.flushLinkRefs()
	}
	e.beginBlock()
	level := min(max(ev.Level, 1), 6)
	st := e.styles.Heading[min(level, e.caps.Colors.HeadingStyles())-1]
	if e.caps.Marks && len(e.stack) == 0 {
		e.w.Raw(iterm2Mark)
	}
	f := &frame{tag: ev.Tag, styled: true, style: st}
	if e.cfg.headingMarkers {
		marker := strings.Repeat("#", level) + " "
		e.w.PushPrefix(marker, strings.Repeat(" ", len(marker)), e.styleSGR(st))
		f.prefix = true
	}
	e.push(f)
}

func (e *engine) item(list *frame) {
	e.w.EndLine()
	if !list.tight && e.margin {
		e.w.Newline()
	}
	e.margin = false
	var marker string
	if list.ordered {
		marker = strconv.Itoa(list.next) + ". "
		list.next++
	} else {
		depth := 0
		for _, f := range e.stack {
			if f.tag == event.TagList && !f.ordered {
				depth++
			}
		}
		marker = bullets[(depth-1)%len(bullets)] + " "
	}
	e.w.PushPrefix(marker, strings.Repeat(" ", textWidth(marker)), e.styleSGR(e.styles.ListMarker))
	e.push(&frame{tag: event.TagItem, prefix: true})
}

// beginBlock ends a partial line and separates the new block from the
// previous one by a blank line.
func (e *engine) beginBlock() {
	e.w.EndLine()
	if e.margin {
		e.w.Newline()
	}
	e.margin = false
}

func (e *engine) rule() {
	e.beginBlock()
	n := e.w.Available()
	if n == 0 {
		n = 40
	}
	e.w.SetLink("")
	e.w.SetStyle(e.styleSGR(e.styles.ThematicBreak))
	e.w.Verbatim(strings.Repeat("═", n))
	e.w.EndLine()
	e.margin = true
	if len(e.stack) == 0 {
		_ = e.w.Flush()
	}
}

func (e *engine) flushCode(c *codeBlock) {
	border := e.cfg.codeBorder && c.fenced
	if border {
		e.codeBorder()
	}
	e.w.SetLink("")
	for span := range e.hl.Highlight(c.text.String(), c.lang) {
		e.w.SetStyle(e.codeSGR[span.Class])
		e.w.Verbatim(span.Text)
	}
	e.w.EndLine()
	if border {
		e.codeBorder()
	}
}

func (e *engine) codeBorder() {
	n := e.w.Available()
	if n == 0 || n > 20 {
		n = 20
	}
	e.w.SetStyle(e.styleSGR(e.styles.CodeBorder))
	e.w.Verbatim(strings.Repeat("─", n))
	e.w.EndLine()
}

func (e *engine) hardBreak() {
	if e.table != nil {
		e.inline(" ")
		return
	}
	e.w.Newline()
}

// inline writes document text with the current style and hyperlink.
func (e *engine) inline(s string) {
	if s == "" {
		return
	}
	if l := e.innermost(event.TagLink); l != nil {
		l.text.WriteString(s)
	}
	sgr, link := e.currentSGR(), e.currentLink()
	if e.table != nil {
		e.table.add(s, sgr, link)
		return
	}
	e.w.SetStyle(sgr)
	e.w.SetLink(link)
	e.w.Text(s)
}

// styled writes s with st layered over the current style.
func (e *engine) styled(st Style, s string) {
	e.applyStyle(st, 1)
	e.inline(s)
	e.applyStyle(st, -1)
}

func (e *engine) endLink(f *frame) {
	if f.href != "" || f.autolink || f.target == "" {
		return
	}
	if strings.TrimSpace(f.text.String()) == f.target {
		return
	}
	if e.cfg.linkRefs {
		e.styled(e.styles.LinkURL, "["+strconv.Itoa(e.addRef(f.target, f.title))+"]")
		return
	}
	e.styled(e.styles.LinkURL, " ("+f.target+")")
}

func (e *engine) addRef(target, title string) int {
	for _, r := range e.refs {
		if r.target == target && r.title == title {
			return r.n
		}
	}
	n := e.nextRef
	e.nextRef++
	e.refs = append(e.refs, linkRef{n: n, target: target, title: title})
	return n
}

func (e *engine) flushLinkRefs() {
	if len(e.refs) == 0 {
		return
	}
	e.beginBlock()
	sgr := e.styleSGR(e.styles.LinkURL)
	for _, r := range e.refs {
		line := "[" + strconv.Itoa(r.n) + "]: " + r.target
		if r.title != "" {
			line += " " + r.title
		}
		e.w.SetLink("")
		e.w.SetStyle(sgr)
		e.w.Text(line)
		e.w.EndLine()
	}
	e.refs = e.refs[:0]
	e.margin = true
}

func (e *engine) image(target, alt string) {
	if e.table == nil && e.caps.Images != termcap.ImageNone && e.resolver != nil {
		if e.inlineImage(target) {
			return
		}
	}
	if alt != "" {
		e.styled(e.styles.LinkText, alt)
		e.inline(" ")
	}
	e.styled(e.styles.LinkURL, "("+target+")")
}

func (e *engine) inlineImage(target string) bool {
	img, err := e.resolver.Resolve(e.ctx, target, e.w.Available())
	var seq []byte
	if err == nil {
		seq, err = imgproto.Encode(img, e.caps.Images)
	}
	if err != nil {
		e.warn(target, err)
		return false
	}
	e.w.EndLine()
	e.w.Image(seq, img.Columns)
	e.w.EndLine()
	return true
}

func (e *engine) warn(target string, err error) {
	e.log.Debug("degraded to text", "target", target, "err", err)
	e.warnings = append(e.warnings, Warning{Target: target, Err: err})
}

func (e *engine) spanStyle(tag event.Tag) Style {
	switch tag {
	case event.TagEmphasis:
		return e.styles.Emphasis
	case event.TagStrong:
		return e.styles.Strong
	default:
		return e.styles.Strikethrough
	}
}

func (e *engine) requireBlock(ev event.Event) error {
	f := e.top()
	if f == nil {
		return nil
	}
	switch f.tag {
	case event.TagBlockQuote, event.TagItem, event.TagFootnoteDefinition:
		return nil
	}
	return e.stackError(ev, "block not allowed here")
}

func (e *engine) requireInline(ev event.Event) error {
	for i := len(e.stack) - 1; i >= 0; i-- {
		tag := e.stack[i].tag
		if tag.Inline() {
			continue
		}
		switch tag {
		case event.TagParagraph, event.TagHeading, event.TagItem, event.TagTableCell:
			return nil
		}
		break
	}
	return e.stackError(ev, "inline content outside a paragraph")
}

func (e *engine) stackError(ev event.Event, reason string) error {
	return &StackError{Event: ev, Open: e.openTag(), Reason: reason}
}

func (e *engine) top() *frame {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

func (e *engine) openTag() event.Tag {
	if f := e.top(); f != nil {
		return f.tag
	}
	return event.TagNone
}

func (e *engine) innermost(tag event.Tag) *frame {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].tag == tag {
			return e.stack[i]
		}
	}
	return nil
}

func (e *engine) push(f *frame) {
	if f.styled {
		e.applyStyle(f.style, 1)
	}
	e.stack = append(e.stack, f)
}

func (e *engine) pop() {
	f := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	if f.prefix {
		e.w.PopPrefix()
	}
	if f.styled {
		e.applyStyle(f.style, -1)
	}
}

// applyStyle adds (delta 1) or removes (delta -1) a style layer. Attributes
// are counted so nested spans unite; the innermost color wins.
func (e *engine) applyStyle(s Style, delta int) {
	for i := 0; i < numAttrs; i++ {
		if s.Attrs&(1<<i) != 0 {
			e.attrs[i] += delta
		}
	}
	if s.Fg.set {
		if delta > 0 {
			e.fgs = append(e.fgs, s.Fg)
		} else if n := len(e.fgs); n > 0 {
			e.fgs = e.fgs[:n-1]
		}
	}
	e.dirty = true
}

func (e *engine) currentSGR() string {
	if e.dirty {
		var s Style
		for i := 0; i < numAttrs; i++ {
			if e.attrs[i] > 0 {
				s.Attrs |= 1 << i
			}
		}
		if n := len(e.fgs); n > 0 {
			s.Fg = e.fgs[n-1]
		}
		e.sgr = s.SGR(e.caps.Colors)
		e.dirty = false
	}
	return e.sgr
}

func (e *engine) currentLink() string {
	if l := e.innermost(event.TagLink); l != nil {
		return l.href
	}
	return ""
}

func (e *engine) styleSGR(s Style) string {
	return s.SGR(e.caps.Colors)
}
