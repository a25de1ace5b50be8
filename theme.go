package mdtty

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pkt.systems/mdtty/highlight"
	"pkt.systems/mdtty/internal/palette"
	"pkt.systems/mdtty/termcap"
)

// Attr is a set of text attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
	AttrStrikethrough

	numAttrs = 6
)

var attrCodes = [numAttrs]string{"1", "2", "3", "4", "7", "9"}

// Color is an RGB foreground color. The zero value means "inherit".
type Color struct {
	r, g, b uint8
	set     bool
}

// RGB returns a color from its components.
func RGB(r, g, b uint8) Color {
	return Color{r: r, g: g, b: b, set: true}
}

// ParseColor parses a color in #rrggbb or #rgb notation.
func ParseColor(hex string) (Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("theme: invalid color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("theme: invalid color %q", hex)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// IsSet reports whether c carries a color.
func (c Color) IsSet() bool { return c.set }

// Components returns the red, green and blue components.
func (c Color) Components() (r, g, b uint8) { return c.r, c.g, c.b }

// ansi16RGB holds typical values for the 16 basic terminal colors.
var ansi16RGB = [16][3]uint8{
	{0, 0, 0},
	{205, 49, 49},
	{13, 188, 121},
	{229, 229, 16},
	{36, 114, 200},
	{188, 63, 188},
	{17, 168, 205},
	{229, 229, 229},
	{102, 102, 102},
	{241, 76, 76},
	{35, 209, 139},
	{245, 245, 67},
	{59, 142, 234},
	{214, 112, 214},
	{41, 184, 219},
	{255, 255, 255},
}

func (c Color) ansi16() int {
	best, bestDist := 0, -1
	for i, rgb := range ansi16RGB {
		dr := int(c.r) - int(rgb[0])
		dg := int(c.g) - int(rgb[1])
		db := int(c.b) - int(rgb[2])
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (c Color) ansi256() int {
	if c.r == c.g && c.g == c.b {
		switch {
		case c.r < 8:
			return 16
		case c.r > 248:
			return 231
		}
		return 232 + (int(c.r)-8)*24/240
	}
	ri := int(c.r) * 5 / 255
	gi := int(c.g) * 5 / 255
	bi := int(c.b) * 5 / 255
	return 16 + 36*ri + 6*gi + bi
}

// Style is a set of attributes plus an optional foreground color.
type Style struct {
	Attrs Attr
	Fg    Color
}

// Merge layers o over s: attributes are united and o's color wins when set.
func (s Style) Merge(o Style) Style {
	s.Attrs |= o.Attrs
	if o.Fg.set {
		s.Fg = o.Fg
	}
	return s
}

// SGR returns the escape sequence selecting s at the given color depth, or
// the empty string when s selects nothing or depth is ColorNone.
func (s Style) SGR(depth termcap.ColorDepth) string {
	if depth == termcap.ColorNone {
		return ""
	}
	var buf [32]byte
	b := append(buf[:0], "\x1b["...)
	n := 0
	for i := 0; i < numAttrs; i++ {
		if s.Attrs&(1<<i) == 0 {
			continue
		}
		if n > 0 {
			b = append(b, ';')
		}
		b = append(b, attrCodes[i]...)
		n++
	}
	if s.Fg.set {
		if n > 0 {
			b = append(b, ';')
		}
		switch depth {
		case termcap.Color16:
			idx := s.Fg.ansi16()
			if idx < 8 {
				b = strconv.AppendInt(b, int64(30+idx), 10)
			} else {
				b = strconv.AppendInt(b, int64(90+idx-8), 10)
			}
		case termcap.Color256:
			b = append(b, "38;5;"...)
			b = strconv.AppendInt(b, int64(s.Fg.ansi256()), 10)
		default:
			b = append(b, "38;2;"...)
			b = strconv.AppendInt(b, int64(s.Fg.r), 10)
			b = append(b, ';')
			b = strconv.AppendInt(b, int64(s.Fg.g), 10)
			b = append(b, ';')
			b = strconv.AppendInt(b, int64(s.Fg.b), 10)
		}
		n++
	}
	if n == 0 {
		return ""
	}
	b = append(b, 'm')
	return string(b)
}

// Styles groups the semantic styles used by the renderer.
type Styles struct {
	Text           Style
	Heading        [6]Style
	Emphasis       Style
	Strong         Style
	Strikethrough  Style
	CodeInline     Style
	CodeBlock      Style
	CodeBorder     Style
	Quote          Style
	QuoteMarker    Style
	ListMarker     Style
	LinkText       Style
	LinkURL        Style
	ThematicBreak  Style
	TableBorder    Style
	TableHeader    Style
	FootnoteMarker Style
	HTML           Style
	// Syntax styles highlighted code by token class, layered over CodeBlock.
	Syntax [highlight.NumClasses]Style
}

// Theme provides named styles for Markdown rendering.
type Theme interface {
	Name() string
	Styles() Styles
}

type theme struct {
	name   string
	styles Styles
}

func (t theme) Name() string   { return t.name }
func (t theme) Styles() Styles { return t.styles }

// NewTheme returns a Theme from a Styles definition.
func NewTheme(name string, styles Styles) Theme {
	return theme{name: name, styles: styles}
}

func style(attrs Attr, hex string) Style {
	c, err := ParseColor(hex)
	if err != nil {
		return Style{Attrs: attrs}
	}
	return Style{Attrs: attrs, Fg: c}
}

func stylesFromPalette(p palette.Palette) Styles {
	s := Styles{
		Text: style(0, p.Foreground),
		Heading: [6]Style{
			style(AttrBold, p.Blue),
			style(AttrBold, p.Purple),
			style(AttrBold, p.Cyan),
			style(AttrBold, p.Green),
			style(AttrBold, p.Yellow),
			style(AttrBold, p.Orange),
		},
		Emphasis:       style(AttrItalic, ""),
		Strong:         style(AttrBold, ""),
		Strikethrough:  style(AttrStrikethrough, ""),
		CodeInline:     style(0, p.Yellow),
		CodeBlock:      style(0, p.Foreground),
		CodeBorder:     style(0, p.Muted),
		Quote:          style(AttrItalic, p.Green),
		QuoteMarker:    style(0, p.Muted),
		ListMarker:     style(AttrBold, p.Cyan),
		LinkText:       style(AttrUnderline, p.Blue),
		LinkURL:        style(0, p.Muted),
		ThematicBreak:  style(0, p.Muted),
		TableBorder:    style(0, p.Muted),
		TableHeader:    style(AttrBold, ""),
		FootnoteMarker: style(0, p.Purple),
		HTML:           style(AttrDim, p.Muted),
	}
	s.Syntax[highlight.Keyword] = style(AttrBold, p.Purple)
	s.Syntax[highlight.Builtin] = style(0, p.Cyan)
	s.Syntax[highlight.Function] = style(0, p.Blue)
	s.Syntax[highlight.Type] = style(0, p.Yellow)
	s.Syntax[highlight.String] = style(0, p.Green)
	s.Syntax[highlight.Number] = style(0, p.Orange)
	s.Syntax[highlight.Comment] = style(AttrItalic, p.Muted)
	s.Syntax[highlight.Operator] = style(0, p.Cyan)
	s.Syntax[highlight.Preprocessor] = style(0, p.Pink)
	s.Syntax[highlight.Error] = style(0, p.Red)
	s.Syntax[highlight.Inserted] = style(0, p.Green)
	s.Syntax[highlight.Deleted] = style(0, p.Red)
	return s
}

var builtinThemes = map[string]Theme{
	"default":             theme{name: "default", styles: stylesFromPalette(palette.PaletteDefault)},
	"outrun-electric":     theme{name: "outrun-electric", styles: stylesFromPalette(palette.PaletteOutrunElectric)},
	"iosvkem":             theme{name: "iosvkem", styles: stylesFromPalette(palette.PaletteDoomIosvkem)},
	"gruvbox":             theme{name: "gruvbox", styles: stylesFromPalette(palette.PaletteDoomGruvbox)},
	"dracula":             theme{name: "dracula", styles: stylesFromPalette(palette.PaletteDoomDracula)},
	"nord":                theme{name: "nord", styles: stylesFromPalette(palette.PaletteDoomNord)},
	"tokyo-night":         theme{name: "tokyo-night", styles: stylesFromPalette(palette.PaletteTokyoNight)},
	"solarized-nightfall": theme{name: "solarized-nightfall", styles: stylesFromPalette(palette.PaletteSolarizedNightfall)},
	"catppuccin-mocha":    theme{name: "catppuccin-mocha", styles: stylesFromPalette(palette.PaletteCatppuccinMocha)},
	"gruvbox-light":       theme{name: "gruvbox-light", styles: stylesFromPalette(palette.PaletteGruvboxLight)},
	"monokai-vibrant":     theme{name: "monokai-vibrant", styles: stylesFromPalette(palette.PaletteMonokaiVibrant)},
	"one-dark-aurora":     theme{name: "one-dark-aurora", styles: stylesFromPalette(palette.PaletteOneDarkAurora)},
	"synthwave-84":        theme{name: "synthwave-84", styles: stylesFromPalette(palette.PaletteSynthwave84)},
	"kanagawa":            theme{name: "kanagawa", styles: stylesFromPalette(palette.PaletteKanagawa)},
	"rose-pine":           theme{name: "rose-pine", styles: stylesFromPalette(palette.PaletteRosePine)},
	"rose-pine-dawn":      theme{name: "rose-pine-dawn", styles: stylesFromPalette(palette.PaletteRosePineDawn)},
	"everforest":          theme{name: "everforest", styles: stylesFromPalette(palette.PaletteEverforest)},
	"everforest-light":    theme{name: "everforest-light", styles: stylesFromPalette(palette.PaletteEverforestLight)},
	"night-owl":           theme{name: "night-owl", styles: stylesFromPalette(palette.PaletteNightOwl)},
	"ayu-mirage":          theme{name: "ayu-mirage", styles: stylesFromPalette(palette.PaletteAyuMirage)},
	"ayu-light":           theme{name: "ayu-light", styles: stylesFromPalette(palette.PaletteAyuLight)},
	"one-light":           theme{name: "one-light", styles: stylesFromPalette(palette.PaletteOneLight)},
	"one-dark":            theme{name: "one-dark", styles: stylesFromPalette(palette.PaletteOneDark)},
	"solarized-light":     theme{name: "solarized-light", styles: stylesFromPalette(palette.PaletteSolarizedLight)},
	"solarized-dark":      theme{name: "solarized-dark", styles: stylesFromPalette(palette.PaletteSolarizedDark)},
	"github-light":        theme{name: "github-light", styles: stylesFromPalette(palette.PaletteGithubLight)},
	"github-dark":         theme{name: "github-dark", styles: stylesFromPalette(palette.PaletteGithubDark)},
	"papercolor-light":    theme{name: "papercolor-light", styles: stylesFromPalette(palette.PalettePapercolorLight)},
	"papercolor-dark":     theme{name: "papercolor-dark", styles: stylesFromPalette(palette.PalettePapercolorDark)},
	"oceanic-next":        theme{name: "oceanic-next", styles: stylesFromPalette(palette.PaletteOceanicNext)},
	"horizon":             theme{name: "horizon", styles: stylesFromPalette(palette.PaletteHorizon)},
	"palenight":           theme{name: "palenight", styles: stylesFromPalette(palette.PalettePalenight)},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	theme, ok := builtinThemes[normalized]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}

// PlainTheme returns a theme that keeps attributes such as bold and
// underline but sets no colors.
func PlainTheme() Theme {
	s := Styles{
		Heading:        [6]Style{{Attrs: AttrBold}, {Attrs: AttrBold}, {Attrs: AttrBold}, {Attrs: AttrBold}, {Attrs: AttrBold}, {Attrs: AttrBold}},
		Emphasis:       Style{Attrs: AttrItalic},
		Strong:         Style{Attrs: AttrBold},
		Strikethrough:  Style{Attrs: AttrStrikethrough},
		Quote:          Style{Attrs: AttrItalic},
		LinkText:       Style{Attrs: AttrUnderline},
		TableHeader:    Style{Attrs: AttrBold},
		FootnoteMarker: Style{Attrs: AttrBold},
	}
	return theme{name: "plain", styles: s}
}
