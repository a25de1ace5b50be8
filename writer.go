package mdtty

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/muesli/reflow/ansi"
	"github.com/rivo/uniseg"
)

const (
	ansiReset        = "\x1b[0m"
	writerBufferSize = 4096
)

var writerPool = sync.Pool{
	New: func() any {
		return &Writer{out: bufio.NewWriterSize(nil, writerBufferSize)}
	},
}

// prefixEntry is one level of line prefix, such as a quote marker or the
// indentation of a list item. first is written on the first line that
// carries content, rest on every following line.
type prefixEntry struct {
	first string
	rest  string
	style string
	used  bool
}

func (p *prefixEntry) current() string {
	if p.used {
		return p.rest
	}
	return p.first
}

// run is a piece of a word sharing one style and hyperlink.
type run struct {
	text  string
	style string
	link  string
	width int
}

// Writer writes styled text to a terminal, wrapping words at the terminal
// width. After every line break it re-emits the active line prefixes so
// quote markers and list indentation continue on wrapped lines. Styles and
// hyperlinks are closed before each line break and reopened after the
// prefix, so no escape sequence spans a line.
//
// A Writer records the first write error; later calls are no-ops and Err
// reports it.
type Writer struct {
	out   *bufio.Writer
	width int

	col       int
	content   int
	lineStart bool

	prefixes []prefixEntry

	style     string
	link      string
	termStyle string
	termLink  string

	word    []run
	wordW   int
	spaces  []run
	spacesW int

	err error
}

// NewWriter returns a Writer that wraps at width columns. A width of zero
// disables wrapping.
func NewWriter(w io.Writer, width int) *Writer {
	wr := &Writer{out: bufio.NewWriterSize(w, writerBufferSize)}
	wr.Reset(w, width)
	return wr
}

// Reset clears all state for reuse with a new output and width.
func (w *Writer) Reset(out io.Writer, width int) {
	w.out.Reset(out)
	if width < 0 {
		width = 0
	}
	w.width = width
	w.col = 0
	w.content = 0
	w.lineStart = true
	w.prefixes = w.prefixes[:0]
	w.style = ""
	w.link = ""
	w.termStyle = ""
	w.termLink = ""
	w.word = w.word[:0]
	w.wordW = 0
	w.spaces = w.spaces[:0]
	w.spacesW = 0
	w.err = nil
}

// Width returns the wrap width, zero when wrapping is disabled.
func (w *Writer) Width() int { return w.width }

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

// SetStyle sets the SGR sequence for subsequent text.
func (w *Writer) SetStyle(sgr string) { w.style = sgr }

// SetLink sets the hyperlink target for subsequent text; empty ends it.
func (w *Writer) SetLink(target string) { w.link = target }

// PushPrefix adds a prefix level. first is used on the first line written
// after the push that carries content; rest on all others.
func (w *Writer) PushPrefix(first, rest, style string) {
	w.flushWord()
	w.prefixes = append(w.prefixes, prefixEntry{first: first, rest: rest, style: style})
}

// PopPrefix removes the innermost prefix level.
func (w *Writer) PopPrefix() {
	w.flushWord()
	if n := len(w.prefixes); n > 0 {
		w.prefixes = w.prefixes[:n-1]
	}
}

// PrefixPending reports whether the innermost prefix has not been written
// yet, as for a list item that has no content so far.
func (w *Writer) PrefixPending() bool {
	n := len(w.prefixes)
	return n > 0 && !w.prefixes[n-1].used
}

// StartLine writes the prefixes of the current line if that has not
// happened yet.
func (w *Writer) StartLine() {
	w.flushWord()
	w.ensureLine()
}

// AtLineStart reports whether nothing has been written on the current line.
func (w *Writer) AtLineStart() bool {
	return w.lineStart && len(w.word) == 0
}

// Available returns the columns left for content after the prefixes, at
// least 1. It returns 0 when wrapping is disabled.
func (w *Writer) Available() int {
	if w.width == 0 {
		return 0
	}
	if a := w.width - w.contentStart(); a > 0 {
		return a
	}
	return 1
}

// Text writes wrappable text. Spaces and tabs are break opportunities,
// newlines end the line and control characters are dropped.
func (w *Writer) Text(s string) {
	state := -1
	for len(s) > 0 {
		var g string
		var gw int
		g, s, gw, state = uniseg.FirstGraphemeClusterInString(s, state)
		switch {
		case g == " " || g == "\t":
			w.flushWord()
			w.spaces = append(w.spaces, run{text: " ", style: w.style, link: w.link, width: 1})
			w.spacesW++
		case strings.IndexByte(g, '\n') >= 0:
			w.Newline()
		case g == "\u00a0":
			w.appendWord(" ", 1)
		default:
			if r, _ := utf8.DecodeRuneInString(g); r == '\r' || isControlRune(r) {
				continue
			}
			w.appendWord(g, gw)
		}
	}
}

// Verbatim writes text that must not be wrapped, such as code. Newlines
// end the line and the prefixes are written before each new line.
func (w *Writer) Verbatim(s string) {
	w.flushWord()
	if w.col > w.contentStart() {
		for _, sp := range w.spaces {
			w.emit(sp)
		}
	}
	w.dropSpaces()
	for len(s) > 0 {
		line := s
		i := strings.IndexByte(s, '\n')
		if i >= 0 {
			line = s[:i]
		}
		if line = sanitizeText(line); line != "" {
			w.emit(run{text: line, style: w.style, link: w.link, width: uniseg.StringWidth(line)})
		}
		if i < 0 {
			return
		}
		w.Newline()
		s = s[i+1:]
	}
}

// Image writes an image escape sequence and accounts for cols columns on
// each line it covers. Newlines in seq separate placeholder rows; every row
// starts behind the current prefixes like wrapped text does.
func (w *Writer) Image(seq []byte, cols int) {
	w.flushWord()
	w.dropSpaces()
	for i, row := range bytes.Split(seq, []byte{'\n'}) {
		if i > 0 {
			w.breakLine()
		}
		w.ensureLine()
		w.setTerminal("", "")
		w.writeBytes(row)
		w.col += cols
	}
}

// Raw writes an escape sequence that occupies no columns.
func (w *Writer) Raw(seq string) {
	w.write(seq)
}

// Newline ends the current line. On an empty line the prefixes are still
// written, trimmed of trailing blanks, so quote markers continue.
func (w *Writer) Newline() {
	w.flushWord()
	w.dropSpaces()
	if w.lineStart {
		w.writeBlankPrefix()
	}
	w.breakLine()
}

// EndLine ends the current line unless nothing has been written on it.
func (w *Writer) EndLine() {
	w.flushWord()
	w.dropSpaces()
	if !w.lineStart {
		w.breakLine()
	}
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err == nil {
		w.err = w.out.Flush()
	}
	return w.err
}

// Finish ends the last line, resets the terminal state and flushes.
func (w *Writer) Finish() error {
	w.EndLine()
	w.setTerminal("", "")
	return w.Flush()
}

// Abort discards pending text, resets the terminal state and flushes.
func (w *Writer) Abort() error {
	w.word = w.word[:0]
	w.wordW = 0
	w.dropSpaces()
	w.setTerminal("", "")
	return w.Flush()
}

func (w *Writer) appendWord(g string, gw int) {
	if n := len(w.word); n > 0 && w.word[n-1].style == w.style && w.word[n-1].link == w.link {
		w.word[n-1].text += g
		w.word[n-1].width += gw
	} else {
		w.word = append(w.word, run{text: g, style: w.style, link: w.link, width: gw})
	}
	w.wordW += gw
}

func (w *Writer) flushWord() {
	if len(w.word) == 0 {
		return
	}
	if w.width > 0 && w.col > w.contentStart() && w.col+w.spacesW+w.wordW > w.width {
		w.breakLine()
	}
	if w.col > w.contentStart() {
		for _, sp := range w.spaces {
			w.emit(sp)
		}
	}
	w.dropSpaces()
	if w.width > 0 && w.wordW > w.width {
		w.emitSplit()
	} else {
		for _, r := range w.word {
			w.emit(r)
		}
	}
	w.word = w.word[:0]
	w.wordW = 0
}

// emitSplit writes a word wider than the whole line, breaking it between
// grapheme clusters.
func (w *Writer) emitSplit() {
	for _, r := range w.word {
		state := -1
		s := r.text
		for len(s) > 0 {
			var g string
			var gw int
			g, s, gw, state = uniseg.FirstGraphemeClusterInString(s, state)
			if w.col+gw > w.width && w.col > w.contentStart() {
				w.breakLine()
			}
			w.emit(run{text: g, style: r.style, link: r.link, width: gw})
		}
	}
}

func (w *Writer) dropSpaces() {
	w.spaces = w.spaces[:0]
	w.spacesW = 0
}

func (w *Writer) emit(r run) {
	w.ensureLine()
	w.setTerminal(r.style, r.link)
	w.write(r.text)
	w.col += r.width
}

func (w *Writer) contentStart() int {
	if !w.lineStart {
		return w.content
	}
	width := 0
	for i := range w.prefixes {
		width += ansi.PrintableRuneWidth(w.prefixes[i].current())
	}
	return width
}

func (w *Writer) ensureLine() {
	if !w.lineStart {
		return
	}
	w.lineStart = false
	w.col = 0
	for i := range w.prefixes {
		p := &w.prefixes[i]
		text := p.current()
		p.used = true
		if text == "" {
			continue
		}
		w.setTerminal(p.style, "")
		w.write(text)
		w.col += ansi.PrintableRuneWidth(text)
	}
	w.content = w.col
}

func (w *Writer) writeBlankPrefix() {
	last := -1
	for i := range w.prefixes {
		if strings.TrimRight(w.prefixes[i].rest, " ") != "" {
			last = i
		}
	}
	for i := 0; i <= last; i++ {
		p := &w.prefixes[i]
		text := p.rest
		if i == last {
			text = strings.TrimRight(text, " ")
		}
		if text == "" {
			continue
		}
		w.setTerminal(p.style, "")
		w.write(text)
	}
}

func (w *Writer) breakLine() {
	w.dropSpaces()
	w.setTerminal("", "")
	w.write("\n")
	w.col = 0
	w.content = 0
	w.lineStart = true
}

func (w *Writer) setTerminal(style, link string) {
	if link != w.termLink {
		if w.termLink != "" {
			w.write(osc8End)
		}
		if link != "" {
			w.write(osc8Start + link + osc8Terminator)
		}
		w.termLink = link
	}
	if style != w.termStyle {
		if w.termStyle != "" {
			w.write(ansiReset)
		}
		if style != "" {
			w.write(style)
		}
		w.termStyle = style
	}
}

func (w *Writer) write(s string) {
	if w.err != nil || s == "" {
		return
	}
	_, w.err = w.out.WriteString(s)
}

func (w *Writer) writeBytes(b []byte) {
	if w.err != nil || len(b) == 0 {
		return
	}
	_, w.err = w.out.Write(b)
}
