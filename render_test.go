package mdtty

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"pkt.systems/mdtty/event"
	"pkt.systems/mdtty/highlight"
	"pkt.systems/mdtty/imgproto"
	"pkt.systems/mdtty/resource"
	"pkt.systems/mdtty/termcap"
)

func assertLines(t *testing.T, out string, want ...string) {
	t.Helper()
	got := plainLines(out)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected output\n---want---\n%s\n---got---\n%s", strings.Join(want, "\n"), strings.Join(got, "\n"))
	}
}

func TestRenderHeadingAndStrongText(t *testing.T) {
	out := renderStream(t, []byte("# Title\n\nSome **bold** text.\n"), 40)
	assertLines(t, out, "# Title", "", "Some bold text.")
	if !regexp.MustCompile(`\x1b\[1;[0-9;]*mbold`).MatchString(out) {
		t.Fatalf("expected bold SGR before strong text: %q", out)
	}
}

func TestHeadingsIncludeMarkers(t *testing.T) {
	out := renderStream(t, []byte("# One\n## Two\n### Three\n"), 0)
	assertLines(t, out, "# One", "", "## Two", "", "### Three")

	out = renderStreamWithOptions(t, []byte("## Two\n"), 0, WithHeadingMarkers(false))
	assertLines(t, out, "Two")
}

func TestRenderNestedSpansUniteAttributes(t *testing.T) {
	out := renderStream(t, []byte("***both***\n"), 40)
	if !regexp.MustCompile(`\x1b\[1;3;[0-9;]*mboth`).MatchString(out) {
		t.Fatalf("expected bold and italic together: %q", out)
	}
}

func TestRenderLists(t *testing.T) {
	out := renderStream(t, []byte("3. a\n4. b\n"), 40)
	assertLines(t, out, "3. a", "4. b")

	out = renderStream(t, []byte("- a\n  - b\n    - c\n      - d\n- e\n"), 40)
	assertLines(t, out, "• a", "  ◦ b", "    ▪ c", "      • d", "• e")

	out = renderStream(t, []byte("- a\n\n- b\n"), 40)
	assertLines(t, out, "• a", "", "• b")
}

func TestRenderOrderedListStartNumbers(t *testing.T) {
	out := renderStream(t, []byte("0. a\n1. b\n"), 40)
	assertLines(t, out, "0. a", "1. b")

	item := func(s string) []event.Event {
		return concat([]event.Event{event.Start(event.TagItem)}, paragraph(event.Text(s)), []event.Event{event.End(event.TagItem)})
	}
	evs := concat([]event.Event{event.OrderedList(1, true)}, item("a"), item("b"), []event.Event{event.End(event.TagList)})
	out, err := renderEvents(t, termcap.None(40), evs...)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertLines(t, out, "1. a", "2. b")
}

func TestRenderListItemBoundary(t *testing.T) {
	src := strings.Join([]string{
		"- Outputs:",
		"  - A user-facing function or interface method must return no more than two values:",
		"    (T, error) or (Response, error).",
		"  - If multiple outputs are required, return a response/result struct as the first value.",
	}, "\n")
	plain := stripANSI(renderStream(t, []byte(src), 80))
	if strings.Contains(plain, "error).  ◦ If multiple outputs") {
		t.Fatalf("list items merged onto same line: %q", plain)
	}
	if !strings.Contains(plain, "\n  ◦ If multiple outputs are required") {
		t.Fatalf("missing list item boundary: %q", plain)
	}
}

func TestRenderWrapIndentation(t *testing.T) {
	src := strings.Join([]string{
		"- Parent item with enough text to wrap cleanly",
		"  - If cycles occur, extract core functionality into a core package",
		"",
		"12. Ordered item with enough text to wrap across lines properly",
		"",
		"> quote line one with more words to wrap",
		"> quote line two with additional words",
	}, "\n")
	plain := stripANSI(renderStream(t, []byte(src), 40))
	if !strings.Contains(plain, "\n    functionality into a core package") {
		t.Fatalf("missing nested list wrap indentation: %q", plain)
	}
	if !strings.Contains(plain, "\n    wrap across lines properly") {
		t.Fatalf("missing ordered list wrap indentation: %q", plain)
	}
	for _, line := range strings.Split(plain, "\n") {
		if strings.Contains(line, "quote") && !strings.HasPrefix(line, "┃ ") {
			t.Fatalf("missing blockquote marker on line: %q", line)
		}
	}
}

func TestRenderTaskList(t *testing.T) {
	out := renderStream(t, []byte("- [x] done\n- [ ] todo\n"), 40)
	assertLines(t, out, "• ☑ done", "• ☐ todo")

	plain := stripANSI(renderStream(t, []byte("- [ ] Task item with enough words to wrap"), 20))
	if !strings.Contains(plain, "\n  enough words to\n  wrap") {
		t.Fatalf("expected task list wrap indent, got: %q", plain)
	}
}

func TestRenderQuoteMarkersAcrossWraps(t *testing.T) {
	out := renderStream(t, []byte("> aaa bbb ccc ddd\n"), 10)
	assertLines(t, out, "┃ aaa bbb", "┃ ccc ddd")

	out = renderStream(t, []byte("> a\n>\n> b\n"), 10)
	assertLines(t, out, "┃ a", "┃", "┃ b")

	out = renderStream(t, []byte("> a\n>\n> > b\n"), 10)
	assertLines(t, out, "┃ a", "┃", "┃ ┃ b")
}

func TestRenderQuotePunctuationStaysAttached(t *testing.T) {
	puncts := []rune{'.', ',', ';', ':', '!', '?'}
	quotes := []string{"\"", "”", "’"}
	for _, p := range puncts {
		for _, q := range quotes {
			t.Run(fmt.Sprintf("punct_%c_quote_%s", p, q), func(t *testing.T) {
				src := fmt.Sprintf("X Y Z%c*%sword*\n", p, q)
				plain := stripANSI(renderStream(t, []byte(src), 6))
				if strings.Contains(plain, fmt.Sprintf("%c\n%s", p, q)) {
					t.Fatalf("expected quote to stay attached to punctuation, got: %q", plain)
				}
			})
		}
	}
}

func TestRenderReflow(t *testing.T) {
	src := "This is a wrapped line that should\nflow into the next line without\nblank lines."
	plain := stripANSI(renderStream(t, []byte(src), 80))
	if !strings.Contains(plain, "line that should flow into the next line without blank lines.") {
		t.Fatalf("expected reflowed paragraph, got: %q", plain)
	}
}

func TestRenderHardBreak(t *testing.T) {
	plain := stripANSI(renderStream(t, []byte("Line one with break  \nLine two after break."), 80))
	if !strings.Contains(plain, "Line one with break\nLine two") {
		t.Fatalf("expected hard line break, got: %q", plain)
	}
}

func TestRenderDecodesNBSP(t *testing.T) {
	out := renderStream(t, []byte("aaaa&nbsp;bbbb cc\n"), 9)
	assertLines(t, out, "aaaa bbbb", "cc")
	if strings.Contains(out, "&nbsp;") || strings.Contains(out, "\u00a0") {
		t.Fatalf("expected NBSP to render as a plain space: %q", out)
	}

	out = renderStream(t, []byte("xx aaaa&nbsp;bbbb\n"), 9)
	assertLines(t, out, "xx", "aaaa bbbb")
}

func TestRenderRule(t *testing.T) {
	out := renderStream(t, []byte("a\n\n---\n\nb\n"), 10)
	assertLines(t, out, "a", "", strings.Repeat("═", 10), "", "b")
}

func TestRenderBlankLineBetweenListAndHeading(t *testing.T) {
	plain := stripANSI(renderStream(t, []byte("1. First\n2. Second\n\n## Header\n"), 0))
	if !strings.Contains(plain, "Second\n\n## Header") {
		t.Fatalf("expected blank line before header, got %q", plain)
	}
}

func TestRenderTablePadsColumns(t *testing.T) {
	out := renderStream(t, []byte("| a | bb |\n|:-|-:|\n| ccc | d |\n"), 40)
	assertLines(t, out,
		" a   │ bb ",
		"─────┼────",
		" ccc │  d ",
	)

	out = renderStream(t, []byte("| x |\n|:-:|\n| wide |\n"), 40)
	assertLines(t, out,
		"  x   ",
		"──────",
		" wide ",
	)
}

func TestRenderCodeBlocks(t *testing.T) {
	border := strings.Repeat("─", 20)
	out := renderStream(t, []byte("```go\nfunc main() {}\n```\n"), 40)
	assertLines(t, out, border, "func main() {}", border)

	out = renderStream(t, []byte("    x := 1\n"), 40)
	assertLines(t, out, "x := 1")

	out = renderStreamWithOptions(t, []byte("```\nline1\n  indented\n\ttab\n```\n"), 40, WithCodeBorder(false))
	assertLines(t, out, "line1", "  indented", "\ttab")

	out = renderStream(t, []byte("> ```\n> x\n> ```\n"), 40)
	assertLines(t, out, "┃ "+border, "┃ x", "┃ "+border)

	out = renderStream(t, []byte("```\n"+strings.Repeat("y", 30)+"\n```\n"), 10)
	assertLines(t, out, strings.Repeat("─", 10), strings.Repeat("y", 30), strings.Repeat("─", 10))
}

func TestRenderCodeHighlighting(t *testing.T) {
	caps := termcap.ForIdentity(termcap.ANSI, 80).WithColors(termcap.ColorTrue)
	out, _ := renderCaps(t, []byte("```go\nfunc main() {}\n```\n"), caps)
	styles := DefaultTheme().Styles()
	want := styles.Text.Merge(styles.CodeBlock).Merge(styles.Syntax[highlight.Keyword]).SGR(termcap.ColorTrue)
	if !strings.Contains(out, want+"func") {
		t.Fatalf("expected keyword SGR %q in %q", want, out)
	}
	if strings.Count(out, "\x1b[") < 3 {
		t.Fatalf("expected highlighted code, got %q", out)
	}
}

func TestRenderWrapProperty(t *testing.T) {
	text := "naïve café 日本語のテキストです emoji 👍🏽 and é combining marks with a few more words here"
	squash := func(s string) string { return strings.ReplaceAll(s, " ", "") }
	for width := 2; width <= 60; width++ {
		lines := plainLines(renderStream(t, []byte(text+"\n"), width))
		for i, line := range lines {
			if w := textWidth(line); w > width {
				t.Fatalf("width %d: line %d is %d wide: %q", width, i+1, w, line)
			}
			if strings.HasSuffix(line, " ") || strings.HasPrefix(line, " ") {
				t.Fatalf("width %d: line %d has stray spaces: %q", width, i+1, line)
			}
		}
		if got := squash(strings.Join(lines, "")); got != squash(text) {
			t.Fatalf("width %d: text changed\nwant %q\n got %q", width, squash(text), got)
		}
	}
}

func TestWrapNeverSplitsWordsThatFit(t *testing.T) {
	const src = "alpha bravo charlie delta echo foxtrot golf hotel"
	words := make(map[string]bool)
	for _, w := range strings.Fields(src) {
		words[w] = true
	}
	for width := 12; width <= 40; width++ {
		for _, line := range plainLines(renderStream(t, []byte(src+"\n"), width)) {
			for _, w := range strings.Fields(line) {
				if !words[w] {
					t.Fatalf("width %d: word split: %q", width, w)
				}
			}
		}
	}
}

func TestRenderLinksWithoutHyperlinks(t *testing.T) {
	out := renderStream(t, []byte("See [website](https://example.com) now.\n"), 0)
	assertLines(t, out, "See website (https://example.com) now.")

	out = renderStream(t, []byte("[https://x.y](https://x.y)\n"), 0)
	assertLines(t, out, "https://x.y")

	out = renderStream(t, []byte("<https://x.y>\n"), 0)
	assertLines(t, out, "https://x.y")
	if strings.Contains(out, osc8Start) {
		t.Fatalf("unexpected hyperlink without support: %q", out)
	}
}

func TestRenderOSC8LinkSpan(t *testing.T) {
	caps := termcap.ForIdentity(termcap.ANSI, 80).WithHyperlinks(true)
	rendered, _ := renderCaps(t, []byte("This is [an example](http://example.com/) inline link."), caps)
	start := strings.Index(rendered, osc8Start)
	if start == -1 {
		t.Fatalf("missing osc8 start: %q", rendered)
	}
	urlEnd := strings.Index(rendered[start+len(osc8Start):], osc8Terminator)
	if urlEnd == -1 {
		t.Fatalf("missing osc8 url terminator: %q", rendered)
	}
	urlEnd += start + len(osc8Start)
	if got := rendered[start+len(osc8Start) : urlEnd]; got != "http://example.com/" {
		t.Fatalf("unexpected osc8 target %q", got)
	}
	linkEnd := strings.Index(rendered[urlEnd+2:], osc8End)
	if linkEnd == -1 {
		t.Fatalf("missing osc8 end: %q", rendered)
	}
	linkEnd += urlEnd + 2
	if linkText := stripANSI(rendered[urlEnd+2 : linkEnd]); linkText != "an example" {
		t.Fatalf("unexpected osc8 link text: %q", linkText)
	}
	assertLines(t, rendered, "This is an example inline link.")
}

func TestOSC8WrappedPreservesSpaces(t *testing.T) {
	caps := termcap.ForIdentity(termcap.ANSI, 30).WithHyperlinks(true)
	out, _ := renderCaps(t, []byte("A paragraph with a link to [site with words](https://example.com) and more text."), caps)
	plain := stripANSI(out)
	if strings.Contains(plain, "paragraphwith") {
		t.Fatalf("spaces collapsed in OSC8 wrapped output: %q", plain)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Count(line, osc8Start+"https://") != 0 && !strings.Contains(line, osc8End) {
			t.Fatalf("hyperlink left open across a line break: %q", line)
		}
	}
}

func TestRenderRelativeLinkTargets(t *testing.T) {
	caps := termcap.ForIdentity(termcap.ANSI, 80).WithHyperlinks(true)
	out, _ := renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("[guide](guide.md#intro) and [top](#top)\n"),
		Capabilities: caps,
		Base:         "/docs",
	})
	if !strings.Contains(out, osc8Start+"file:///docs/guide.md#intro"+osc8Terminator) {
		t.Fatalf("expected file URL for relative link: %q", out)
	}
	assertLines(t, out, "guide and top (#top)")

	out, _ = renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("[next](next.md)\n"),
		Capabilities: caps,
		Base:         "https://example.com/docs/readme.md",
	})
	if !strings.Contains(out, osc8Start+"https://example.com/docs/next.md"+osc8Terminator) {
		t.Fatalf("expected URL resolved against base: %q", out)
	}
}

func TestRenderLinkReferences(t *testing.T) {
	src := "[a](https://x.y) and [b](https://x.y) [c](https://z \"Zed\")\n"
	out := renderStreamWithOptions(t, []byte(src), 0, WithLinkReferences(true))
	assertLines(t, out, "a[1] and b[1] c[2]", "", "[1]: https://x.y", "[2]: https://z Zed")

	out = renderStreamWithOptions(t, []byte("[a](https://x.y)\n\n# Next\n\n[b](https://z)\n"), 0, WithLinkReferences(true))
	assertLines(t, out, "a[1]", "", "[1]: https://x.y", "", "# Next", "", "b[2]", "", "[2]: https://z")
}

func TestRenderFootnotes(t *testing.T) {
	src := "Text[^b] more[^a].\n\n[^a]: Ay.\n[^b]: Bee.\n"
	out := renderStream(t, []byte(src), 40)
	assertLines(t, out, "Text[^1] more[^2].", "", "[^1]: Bee.", "", "[^2]: Ay.")

	// goldmark drops definitions nothing refers to before they become events.
	out = renderStream(t, []byte("Text[^a].\n\n[^a]: Ay.\n[^z]: Orphan.\n"), 40)
	assertLines(t, out, "Text[^1].", "", "[^1]: Ay.")
}

func footnoteDef(label string, evs ...event.Event) []event.Event {
	out := []event.Event{{Kind: event.KindStart, Tag: event.TagFootnoteDefinition, Target: label}}
	out = append(out, evs...)
	return append(out, event.End(event.TagFootnoteDefinition))
}

func footnoteRef(label string) event.Event {
	return event.Event{Kind: event.KindFootnoteRef, Target: label}
}

func paragraph(evs ...event.Event) []event.Event {
	out := []event.Event{event.Start(event.TagParagraph)}
	out = append(out, evs...)
	return append(out, event.End(event.TagParagraph))
}

func concat(parts ...[]event.Event) []event.Event {
	var out []event.Event
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestFootnoteOrderingFromEvents(t *testing.T) {
	caps := termcap.ForIdentity(termcap.ANSI, 40)
	tests := []struct {
		name string
		evs  []event.Event
		want []string
	}{
		{
			name: "definitions before references",
			evs: concat(
				footnoteDef("y", paragraph(event.Text("why"))...),
				footnoteDef("x", paragraph(event.Text("ex"))...),
				paragraph(event.Text("a"), footnoteRef("x"), event.Text(" b"), footnoteRef("y")),
			),
			want: []string{"a[^1] b[^2]", "", "[^1]: ex", "", "[^2]: why"},
		},
		{
			name: "cycle",
			evs: concat(
				paragraph(event.Text("x"), footnoteRef("a")),
				footnoteDef("a", paragraph(event.Text("see"), footnoteRef("b"))...),
				footnoteDef("b", paragraph(event.Text("back"), footnoteRef("a"))...),
			),
			want: []string{"x[^1]", "", "[^1]: see[^2]", "", "[^2]: back[^1]"},
		},
		{
			name: "unreferenced definition last",
			evs: concat(
				footnoteDef("z", paragraph(event.Text("orphan"))...),
				paragraph(event.Text("x"), footnoteRef("a")),
				footnoteDef("a", paragraph(event.Text("used"))...),
			),
			want: []string{"x[^1]", "", "[^1]: used", "", "[^2]: orphan"},
		},
		{
			name: "first definition wins",
			evs: concat(
				paragraph(event.Text("x"), footnoteRef("a")),
				footnoteDef("a", paragraph(event.Text("first"))...),
				footnoteDef("a", paragraph(event.Text("second"))...),
			),
			want: []string{"x[^1]", "", "[^1]: first"},
		},
		{
			name: "reference without definition",
			evs:  paragraph(event.Text("x"), footnoteRef("missing")),
			want: []string{"x[^1]"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := renderEvents(t, caps, tc.evs...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			assertLines(t, out, tc.want...)
		})
	}
}

func TestStackConsistencyErrors(t *testing.T) {
	tests := []struct {
		name  string
		evs   []event.Event
		atEOF bool
		open  event.Tag
	}{
		{
			name: "end without start",
			evs:  []event.Event{event.End(event.TagParagraph)},
			open: event.TagNone,
		},
		{
			name: "mismatched end",
			evs:  []event.Event{event.Start(event.TagParagraph), event.Text("x"), event.End(event.TagHeading)},
			open: event.TagParagraph,
		},
		{
			name:  "open at end of input",
			evs:   []event.Event{event.Start(event.TagParagraph), event.Text("x")},
			atEOF: true,
			open:  event.TagParagraph,
		},
		{
			name: "text outside a block",
			evs:  []event.Event{event.Text("x")},
			open: event.TagNone,
		},
		{
			name: "item outside a list",
			evs:  []event.Event{event.Start(event.TagItem)},
			open: event.TagNone,
		},
		{
			name: "paragraph inside paragraph",
			evs:  []event.Event{event.Start(event.TagParagraph), event.Start(event.TagParagraph)},
			open: event.TagParagraph,
		},
		{
			name:  "unterminated footnote definition",
			evs:   []event.Event{{Kind: event.KindStart, Tag: event.TagFootnoteDefinition, Target: "a"}},
			atEOF: true,
			open:  event.TagFootnoteDefinition,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := renderEvents(t, termcap.ForIdentity(termcap.ANSI, 40), tc.evs...)
			if !errors.Is(err, ErrStackConsistency) {
				t.Fatalf("expected stack consistency error, got %v", err)
			}
			var renderErr *RenderError
			if !errors.As(err, &renderErr) {
				t.Fatalf("expected RenderError, got %T", err)
			}
			var stackErr *StackError
			if !errors.As(err, &stackErr) {
				t.Fatalf("expected StackError, got %T", err)
			}
			if stackErr.AtEOF != tc.atEOF || stackErr.Open != tc.open {
				t.Fatalf("unexpected details: %+v", stackErr)
			}
		})
	}
}

func TestRenderOutputFailureIsRenderError(t *testing.T) {
	_, err := Render(context.Background(), RenderRequest{
		Reader:       strings.NewReader("# Title\n\nparagraph\n"),
		Writer:       failingWriter{},
		Capabilities: termcap.ForIdentity(termcap.ANSI, 40),
	})
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if !errors.Is(err, errWriteFailed) {
		t.Fatalf("expected the write error to be wrapped, got %v", err)
	}
}

func TestRenderWithoutColorEmitsNoEscapes(t *testing.T) {
	src := "# Title\n\n*em* **strong** `code` [link](https://x.y)\n\n```go\nx := 1\n```\n\n> quote\n"
	out, _ := renderCaps(t, []byte(src), termcap.None(40))
	if strings.Contains(out, "\x1b") {
		t.Fatalf("unexpected escape sequence: %q", out)
	}
	if !strings.Contains(out, "em strong code link (https://x.y)") {
		t.Fatalf("missing text: %q", out)
	}
}

func TestRenderDropsControlCharactersFromEvents(t *testing.T) {
	out, err := renderEvents(t, termcap.None(40), paragraph(event.Text("a\x1b[31mb\u009bc"))...)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "a[31mbc\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderHTML(t *testing.T) {
	out := renderStream(t, []byte("<div>\nhello <b>world</b>\n</div>\n"), 40)
	assertLines(t, out, "hello world")

	out = renderStream(t, []byte("a <b>bold</b> c<br>d\n"), 40)
	assertLines(t, out, "a bold c", "d")

	out = renderStream(t, []byte("<script>\nalert(1)\n</script>\n\ntext\n"), 40)
	if strings.Contains(out, "alert") {
		t.Fatalf("script content rendered: %q", out)
	}
}

func TestRenderFrontMatter(t *testing.T) {
	src := []byte("---\ntitle: x\n---\n# Hi\n")
	out := renderStream(t, src, 40)
	assertLines(t, out, "# Hi")

	out = renderStreamWithOptions(t, src, 40, WithFrontMatter(true))
	if !strings.Contains(stripANSI(out), "title: x") {
		t.Fatalf("expected front matter to be kept: %q", out)
	}
}

func TestRenderIterm2Marks(t *testing.T) {
	out, _ := renderCaps(t, []byte("# One\n\n> ## quoted\n"), termcap.ForIdentity(termcap.ITerm2, 40))
	if strings.Count(out, iterm2Mark) != 1 {
		t.Fatalf("expected one mark for the top-level heading: %q", out)
	}
	out, _ = renderCaps(t, []byte("# One\n"), termcap.ForIdentity(termcap.Kitty, 40))
	if strings.Contains(out, iterm2Mark) {
		t.Fatalf("unexpected mark: %q", out)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 5), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func TestRenderInlineImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "pic.png"), 20, 40)
	out, res := renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("before\n\n![alt](pic.png)\n\nafter\n"),
		Capabilities: termcap.ForIdentity(termcap.Kitty, 40),
		Base:         dir,
		Resolver:     resource.NewResolver(resource.Config{Base: dir}),
	})
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if !strings.Contains(out, "\x1b_G") {
		t.Fatalf("expected kitty image sequence: %q", out)
	}
	if strings.Contains(out, "(pic.png)") {
		t.Fatalf("image rendered as text: %q", out)
	}
}

func TestRenderMissingImageDegradesWithWarning(t *testing.T) {
	dir := t.TempDir()
	out, res := renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("![alt](missing.png)\n"),
		Capabilities: termcap.ForIdentity(termcap.Kitty, 40),
		Base:         dir,
		Resolver:     resource.NewResolver(resource.Config{Base: dir}),
	})
	assertLines(t, out, "alt (missing.png)")
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Target != "missing.png" || !errors.Is(w.Err, resource.ErrNotFound) {
		t.Fatalf("unexpected warning %v", w)
	}
}

type fakeResolver struct {
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, target string, maxCols int) (*imgproto.Image, error) {
	f.calls++
	return nil, io.ErrUnexpectedEOF
}

func TestRenderImageWithoutSupportIsText(t *testing.T) {
	resolver := &fakeResolver{}
	out, res := renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("![alt](pic.png) and ![](other.png)\n"),
		Capabilities: termcap.ForIdentity(termcap.ANSI, 80),
		Resolver:     resolver,
	})
	assertLines(t, out, "alt (pic.png) and (other.png)")
	if len(res.Warnings) != 0 || resolver.calls != 0 {
		t.Fatalf("image support is off: warnings %v, calls %d", res.Warnings, resolver.calls)
	}
}

func TestRenderImageInTableIsText(t *testing.T) {
	resolver := &fakeResolver{}
	out, res := renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("| pic |\n|-----|\n| ![a](p.png) |\n"),
		Capabilities: termcap.ForIdentity(termcap.Kitty, 80),
		Resolver:     resolver,
	})
	if !strings.Contains(stripANSI(out), "a (p.png)") {
		t.Fatalf("expected textual image in table: %q", out)
	}
	if len(res.Warnings) != 0 || resolver.calls != 0 {
		t.Fatalf("unexpected resolve in table: warnings %v, calls %d", res.Warnings, resolver.calls)
	}
}

func TestRenderResolverErrorWarns(t *testing.T) {
	resolver := &fakeResolver{}
	out, res := renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("![alt](pic.png)\n"),
		Capabilities: termcap.ForIdentity(termcap.ITerm2, 80),
		Resolver:     resolver,
	})
	assertLines(t, out, "alt (pic.png)")
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0].Err, io.ErrUnexpectedEOF) {
		t.Fatalf("unexpected warnings %v", res.Warnings)
	}
}

type staticResolver struct {
	img *imgproto.Image
}

func (s staticResolver) Resolve(ctx context.Context, target string, maxCols int) (*imgproto.Image, error) {
	return s.img, nil
}

func TestRenderTerminologyImageInsideQuote(t *testing.T) {
	out, res := renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("> before\n>\n> ![a](x.png)\n>\n> after\n"),
		Capabilities: termcap.ForIdentity(termcap.Terminology, 40).WithColors(termcap.ColorNone),
		Resolver:     staticResolver{img: &imgproto.Image{Source: "/tmp/x.png", Columns: 3, Rows: 2}},
	})
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	const row = "\x1b}ib\x00###\x1b}ie\x00"
	want := "┃ before\n┃\n┃ \x1b}ic#3;2;/tmp/x.png\x00" + row + "\n┃ " + row + "\n┃\n┃ after\n"
	if out != want {
		t.Fatalf("unexpected output\nwant %q\n got %q", want, out)
	}
	for i, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if !strings.HasPrefix(line, "┃") {
			t.Fatalf("line %d lost its quote marker: %q", i+1, line)
		}
	}
}

type failingFetcher struct {
	calls int
}

func (f *failingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestRenderRemoteImageFetchFailure(t *testing.T) {
	fetcher := &failingFetcher{}
	out, res := renderRequest(t, RenderRequest{
		Reader:       strings.NewReader("![alt](http://example/img.png)\n"),
		Capabilities: termcap.ForIdentity(termcap.Kitty, 80),
		Resolver:     resource.NewResolver(resource.Config{Fetcher: fetcher}),
	})
	assertLines(t, out, "alt (http://example/img.png)")
	if fetcher.calls != 1 {
		t.Fatalf("expected one fetch, got %d", fetcher.calls)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Target != "http://example/img.png" || !errors.Is(w.Err, resource.ErrFetchFailed) {
		t.Fatalf("unexpected warning %v", w)
	}
}

func TestRenderSampleTextPresent(t *testing.T) {
	src := readSample(t)
	out := stripANSI(renderStream(t, src, 60))
	for _, want := range []string{
		"# Rendering Markdown in the terminal",
		"┃ ┃ Nested quotes stack their markers.",
		"1. First ordered item",
		"• ☑ finished task",
		"fmt.Println(\"hello, terminal\") // greet",
		"    and its indentation",
		" 日本語  │ ワイド │    1 ",
		"Diagram of the pipeline (images/pipeline.png)",
		"Some inline HTML in a block.",
		"[^1]: The first footnote.",
		"Unicode: naïve café, emoji 👍🏽, combining",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in rendered sample:\n%s", want, out)
		}
	}
	if strings.Contains(out, "title: Sample document") {
		t.Fatalf("front matter rendered")
	}
}

type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

func TestRenderOneByteChunks(t *testing.T) {
	out, _ := renderRequest(t, RenderRequest{
		Reader:       &oneByteReader{data: []byte("UTF-8 test — ok")},
		Capabilities: termcap.ForIdentity(termcap.ANSI, 80),
	})
	assertLines(t, out, "UTF-8 test — ok")
}

func TestEventsDumpsStream(t *testing.T) {
	events, err := Events([]byte("---\na: b\n---\n# Hi\n"))
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	evs, err := event.Collect(events)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(evs) != 3 || evs[0].Tag != event.TagHeading || evs[1].Text != "Hi" {
		t.Fatalf("unexpected events %v", evs)
	}
	if _, err := Events([]byte{0xff, 0xfe}); err == nil {
		t.Fatalf("expected error for invalid input")
	}
}
