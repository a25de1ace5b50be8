package mdtty

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"pkt.systems/mdtty/event"
)

func (e *engine) htmlBlock(ev event.Event) error {
	if err := e.requireBlock(ev); err != nil {
		return err
	}
	e.beginBlock()
	e.applyStyle(e.styles.HTML, 1)
	e.walkHTML(ev.Text, true)
	e.applyStyle(e.styles.HTML, -1)
	e.w.EndLine()
	e.margin = true
	if len(e.stack) == 0 {
		_ = e.w.Flush()
	}
	return nil
}

func (e *engine) htmlInline(src string) {
	e.applyStyle(e.styles.HTML, 1)
	e.walkHTML(src, false)
	e.applyStyle(e.styles.HTML, -1)
}

// walkHTML renders the text of an HTML fragment. Tags are not shown; br
// breaks the line, img renders like a Markdown image and block elements
// start new lines. Script and style content is skipped.
func (e *engine) walkHTML(src string, block bool) {
	z := html.NewTokenizer(strings.NewReader(src))
	hidden := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return
		case html.TextToken:
			if hidden > 0 {
				continue
			}
			text := string(z.Text())
			if block {
				text = collapseSpace(text)
				if strings.TrimSpace(text) == "" {
					continue
				}
			}
			e.inline(text)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch a := atom.Lookup(name); {
			case a == atom.Br:
				e.hardBreak()
			case a == atom.Img:
				var src, alt string
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					switch string(key) {
					case "src":
						src = string(val)
					case "alt":
						alt = string(val)
					}
				}
				if src != "" {
					e.image(src, alt)
				}
			case a == atom.Script || a == atom.Style:
				if tt == html.StartTagToken {
					hidden++
				}
			case block && blockElement(a):
				e.w.EndLine()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch a := atom.Lookup(name); {
			case a == atom.Script || a == atom.Style:
				if hidden > 0 {
					hidden--
				}
			case block && blockElement(a):
				e.w.EndLine()
			}
		}
	}
}

func blockElement(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Dl, atom.Dt, atom.Dd,
		atom.Table, atom.Tr, atom.Blockquote, atom.Pre, atom.Details, atom.Summary:
		return true
	}
	return false
}
