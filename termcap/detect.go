package termcap

import (
	"os"
	"strconv"
	"strings"
)

// Detect probes environment variables through getenv and returns the
// capabilities of the terminal they describe. A nil getenv reads the process
// environment.
func Detect(getenv func(string) string, width int) Capabilities {
	if getenv == nil {
		getenv = os.Getenv
	}
	caps := ForIdentity(detectIdentity(getenv), width)
	if caps.Identity == Dumb {
		return caps
	}
	if depth := detectColors(getenv); depth > caps.Colors {
		caps.Colors = depth
	}
	if !caps.Hyperlinks {
		caps.Hyperlinks = detectHyperlinks(getenv)
	}
	if getenv("OSC8") == "0" {
		caps.Hyperlinks = false
	}
	if getenv("NO_COLOR") != "" {
		caps.Colors = ColorNone
	}
	return caps
}

func detectIdentity(getenv func(string) string) Identity {
	term := strings.ToLower(getenv("TERM"))
	if term == "dumb" {
		return Dumb
	}
	if getenv("TERMINOLOGY") == "1" {
		return Terminology
	}
	if getenv("KITTY_WINDOW_ID") != "" || strings.Contains(term, "kitty") {
		return Kitty
	}
	switch getenv("TERM_PROGRAM") {
	case "iTerm.app":
		return ITerm2
	case "WezTerm":
		return WezTerm
	}
	if getenv("ITERM_SESSION_ID") != "" {
		return ITerm2
	}
	if getenv("WEZTERM_EXECUTABLE") != "" {
		return WezTerm
	}
	return ANSI
}

func detectColors(getenv func(string) string) ColorDepth {
	colorterm := strings.ToLower(getenv("COLORTERM"))
	if colorterm == "truecolor" || colorterm == "24bit" {
		return ColorTrue
	}
	if getenv("WT_SESSION") != "" || getenv("KONSOLE_VERSION") != "" || getenv("VTE_VERSION") != "" {
		return ColorTrue
	}
	term := strings.ToLower(getenv("TERM"))
	switch {
	case strings.Contains(term, "truecolor") || strings.Contains(term, "direct"):
		return ColorTrue
	case strings.Contains(term, "256color"):
		return Color256
	}
	return Color16
}

func detectHyperlinks(getenv func(string) string) bool {
	if getenv("DOMTERM") != "" {
		return true
	}
	if getenv("WT_SESSION") != "" {
		return true
	}
	if getenv("TERM_PROGRAM") == "vscode" {
		return true
	}
	if vte := getenv("VTE_VERSION"); vte != "" {
		if n, err := strconv.Atoi(vte); err == nil && n >= 5000 {
			return true
		}
	}
	return false
}
