// Package termcap describes what the attached terminal can display.
//
// A Capabilities value is built once per run, usually by Detect, and is
// treated as immutable afterwards. The With* helpers return modified copies.
package termcap

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity names a family of terminal emulators sharing one capability bundle.
type Identity uint8

const (
	// Dumb is a terminal without escape sequence support.
	Dumb Identity = iota
	// ANSI is a generic ANSI terminal without inline images.
	ANSI
	// ITerm2 is iTerm2 or a terminal speaking its OSC 1337 image protocol.
	ITerm2
	// Kitty is a terminal speaking the kitty graphics protocol.
	Kitty
	// WezTerm accepts iTerm2 images and OSC 8 hyperlinks.
	WezTerm
	// Terminology is the Enlightenment terminal with its own image escapes.
	Terminology
)

var identityNames = [...]string{
	Dumb:        "dumb",
	ANSI:        "ansi",
	ITerm2:      "iterm2",
	Kitty:       "kitty",
	WezTerm:     "wezterm",
	Terminology: "terminology",
}

func (i Identity) String() string {
	if int(i) < len(identityNames) {
		return identityNames[i]
	}
	return "identity(" + strconv.Itoa(int(i)) + ")"
}

// ParseIdentity maps a name as printed by Identity.String back to its value.
func ParseIdentity(name string) (Identity, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, n := range identityNames {
		if n == normalized {
			return Identity(i), nil
		}
	}
	return Dumb, fmt.Errorf("termcap: unknown terminal %q", name)
}

// ImageProtocol is the inline image protocol a terminal understands.
type ImageProtocol uint8

const (
	ImageNone ImageProtocol = iota
	ImageITerm2
	ImageKitty
	ImageTerminology
)

func (p ImageProtocol) String() string {
	switch p {
	case ImageNone:
		return "none"
	case ImageITerm2:
		return "iterm2"
	case ImageKitty:
		return "kitty"
	case ImageTerminology:
		return "terminology"
	default:
		return "protocol(" + strconv.Itoa(int(p)) + ")"
	}
}

// ColorDepth is the color support tier of a terminal.
type ColorDepth uint8

const (
	ColorNone ColorDepth = iota
	Color16
	Color256
	ColorTrue
)

func (d ColorDepth) String() string {
	switch d {
	case ColorNone:
		return "none"
	case Color16:
		return "16"
	case Color256:
		return "256"
	case ColorTrue:
		return "truecolor"
	default:
		return "depth(" + strconv.Itoa(int(d)) + ")"
	}
}

// HeadingStyles returns how many distinct heading colors the depth can
// show before levels start sharing one.
func (d ColorDepth) HeadingStyles() int {
	switch d {
	case ColorNone:
		return 1
	case Color16:
		return 3
	default:
		return 6
	}
}

const (
	DefaultCellWidth  = 10
	DefaultCellHeight = 20
)

// Capabilities is the immutable description of the active terminal.
type Capabilities struct {
	Identity   Identity
	Images     ImageProtocol
	Hyperlinks bool
	// Marks reports support for iTerm2 style jump marks.
	Marks  bool
	Colors ColorDepth
	// Width is the column count; 0 disables wrapping.
	Width int
	// CellWidth and CellHeight give the pixel size of one character cell.
	CellWidth  int
	CellHeight int
}

// ForIdentity returns the fixed capability bundle for a terminal identity.
func ForIdentity(id Identity, width int) Capabilities {
	c := Capabilities{
		Identity:   id,
		Width:      width,
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
	}
	switch id {
	case Dumb:
		c.Colors = ColorNone
	case ANSI:
		c.Colors = Color16
	case ITerm2:
		c.Images = ImageITerm2
		c.Hyperlinks = true
		c.Marks = true
		c.Colors = ColorTrue
	case Kitty:
		c.Images = ImageKitty
		c.Hyperlinks = true
		c.Colors = ColorTrue
	case WezTerm:
		c.Images = ImageITerm2
		c.Hyperlinks = true
		c.Colors = ColorTrue
	case Terminology:
		c.Images = ImageTerminology
		c.Colors = Color256
	}
	return c
}

// None returns capabilities for plain text output: no color, no images and
// no hyperlinks.
func None(width int) Capabilities {
	return ForIdentity(Dumb, width)
}

// WithoutImages returns a copy with inline images disabled.
func (c Capabilities) WithoutImages() Capabilities {
	c.Images = ImageNone
	return c
}

// WithHyperlinks returns a copy with OSC 8 hyperlinks enabled or disabled.
func (c Capabilities) WithHyperlinks(enabled bool) Capabilities {
	c.Hyperlinks = enabled
	return c
}

// WithColors returns a copy using the given color depth.
func (c Capabilities) WithColors(depth ColorDepth) Capabilities {
	c.Colors = depth
	return c
}

// WithWidth returns a copy wrapping at width columns.
func (c Capabilities) WithWidth(width int) Capabilities {
	c.Width = width
	return c
}

// WithCellSize returns a copy with the given cell pixel size. Non-positive
// values keep the current size.
func (c Capabilities) WithCellSize(w, h int) Capabilities {
	if w > 0 {
		c.CellWidth = w
	}
	if h > 0 {
		c.CellHeight = h
	}
	return c
}
