package mdtty

import (
	"strings"

	"pkt.systems/mdtty/event"
)

// A table is buffered until it ends because column widths depend on every
// row.
type table struct {
	align []event.Alignment
	rows  []tableRow
	open  bool
}

type tableRow struct {
	header bool
	cells  []tableCell
}

type tableCell struct {
	segs  []cellSegment
	width int
}

type cellSegment struct {
	text  string
	style string
	link  string
}

func newTable(align []event.Alignment) *table {
	return &table{align: align}
}

func (t *table) startRow(header bool) {
	t.rows = append(t.rows, tableRow{header: header})
}

func (t *table) endRow() {}

func (t *table) startCell() {
	if len(t.rows) == 0 {
		t.startRow(false)
	}
	row := &t.rows[len(t.rows)-1]
	row.cells = append(row.cells, tableCell{})
	t.open = true
}

func (t *table) endCell() { t.open = false }

func (t *table) add(text, style, link string) {
	if !t.open {
		return
	}
	text = strings.ReplaceAll(sanitizeText(text), "\n", " ")
	if text == "" {
		return
	}
	row := &t.rows[len(t.rows)-1]
	cell := &row.cells[len(row.cells)-1]
	if n := len(cell.segs); n > 0 && cell.segs[n-1].style == style && cell.segs[n-1].link == link {
		cell.segs[n-1].text += text
	} else {
		cell.segs = append(cell.segs, cellSegment{text: text, style: style, link: link})
	}
	cell.width += textWidth(text)
}

func (t *table) columns() []int {
	cols := len(t.align)
	for _, row := range t.rows {
		cols = max(cols, len(row.cells))
	}
	widths := make([]int, cols)
	for _, row := range t.rows {
		for i, cell := range row.cells {
			widths[i] = max(widths[i], cell.width)
		}
	}
	return widths
}

func (t *table) alignment(col int) event.Alignment {
	if col < len(t.align) {
		return t.align[col]
	}
	return event.AlignNone
}

// flushTable writes the buffered table. Every cell is padded to the width
// of its column; a rule separates the head from the body.
func (e *engine) flushTable(t *table) {
	widths := t.columns()
	if len(widths) == 0 {
		return
	}
	border := e.styleSGR(e.styles.TableBorder)
	e.w.SetLink("")
	for i, row := range t.rows {
		for c, width := range widths {
			if c > 0 {
				e.w.SetStyle(border)
				e.w.Verbatim("│")
			}
			var cell tableCell
			if c < len(row.cells) {
				cell = row.cells[c]
			}
			left, right := padding(t.alignment(c), width-cell.width)
			e.w.SetStyle("")
			e.w.Verbatim(strings.Repeat(" ", left+1))
			for _, seg := range cell.segs {
				e.w.SetStyle(seg.style)
				e.w.SetLink(seg.link)
				e.w.Verbatim(seg.text)
			}
			e.w.SetLink("")
			e.w.SetStyle("")
			e.w.Verbatim(strings.Repeat(" ", right+1))
		}
		e.w.EndLine()
		if row.header && (i+1 == len(t.rows) || !t.rows[i+1].header) {
			e.w.SetStyle(border)
			for c, width := range widths {
				if c > 0 {
					e.w.Verbatim("┼")
				}
				e.w.Verbatim(strings.Repeat("─", width+2))
			}
			e.w.EndLine()
		}
	}
}

func padding(align event.Alignment, extra int) (left, right int) {
	if extra <= 0 {
		return 0, 0
	}
	switch align {
	case event.AlignRight:
		return extra, 0
	case event.AlignCenter:
		return extra / 2, extra - extra/2
	default:
		return 0, extra
	}
}
