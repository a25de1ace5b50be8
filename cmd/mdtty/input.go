package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const defaultWidth = 80

// input is one document named on the command line. Exactly one of path
// and url is set, or neither for stdin.
type input struct {
	name string
	path string
	url  string
}

// base is what relative links and images in the document resolve against.
func (in input) base() string {
	switch {
	case in.url != "":
		return in.url
	case in.path != "":
		return filepath.Dir(in.path)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return ""
}

func parseInputs(args []string) ([]input, error) {
	if len(args) == 0 {
		return []input{{name: "-"}}, nil
	}
	inputs := make([]input, 0, len(args))
	for _, raw := range args {
		in, err := parseInput(raw)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func parseInput(raw string) (input, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return input{}, fmt.Errorf("empty input argument")
	}
	if raw == "-" {
		return input{name: "-"}, nil
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return input{name: raw, url: raw}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return input{name: raw, path: normalizePath(path)}, nil
		}
	}
	return input{name: raw, path: normalizePath(raw)}, nil
}

func (r *renderer) open(ctx context.Context, in input) (io.Reader, io.Closer, error) {
	switch {
	case in.url != "":
		if r.useHTTP() {
			return openURL(ctx, r.client, in.url)
		}
		if r.fetcher == nil {
			return nil, nil, fmt.Errorf("%s: remote fetching is disabled", in.url)
		}
		data, err := r.fetcher.Fetch(ctx, in.url)
		if err != nil {
			return nil, nil, err
		}
		return bytes.NewReader(data), nil, nil
	case in.path != "":
		return openFile(in.path)
	}
	return r.stdin, nil, nil
}

func openURL(ctx context.Context, client *http.Client, raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string, stdout io.Writer) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" || path == "-" {
		return stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

// resolveWidth prefers an explicit width, then the size of the terminal
// behind w, then $COLUMNS.
func resolveWidth(width int, w io.Writer) int {
	if width > 0 {
		return width
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if cols, err := strconv.Atoi(value); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultWidth
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
