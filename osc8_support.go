package mdtty

import (
	"net/url"
	"path/filepath"
	"strings"
)

const (
	osc8Start      = "\x1b]8;;"
	osc8Terminator = "\x1b\\"
	osc8End        = "\x1b]8;;\x1b\\"

	iterm2Mark = "\x1b]1337;SetMark\a"
)

// linkBase resolves relative link targets against the location of the
// document being rendered.
type linkBase struct {
	url *url.URL
	dir string
}

func newLinkBase(base string) linkBase {
	if u, err := url.Parse(base); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return linkBase{url: u}
	}
	dir := base
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return linkBase{dir: dir}
}

// hyperlink returns the OSC 8 target for a link destination. ok is false
// when the destination cannot be turned into an absolute URL, as with a bare
// fragment in a local document.
func (b linkBase) hyperlink(target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", false
	}
	if u.IsAbs() {
		return u.String(), true
	}
	if b.url != nil {
		return b.url.ResolveReference(u).String(), true
	}
	if u.Path == "" {
		return "", false
	}
	p := filepath.FromSlash(u.Path)
	if !filepath.IsAbs(p) {
		p = filepath.Join(b.dir, p)
	}
	file := url.URL{Scheme: "file", Path: filepath.ToSlash(p), Fragment: u.Fragment}
	return file.String(), true
}
