package mdtty

import (
	"context"
	"fmt"
	"io"

	"pkt.systems/mdtty/event"
	"pkt.systems/mdtty/highlight"
	"pkt.systems/mdtty/imgproto"
	"pkt.systems/mdtty/internal/markdown"
	"pkt.systems/mdtty/termcap"
)

// ImageResolver loads the image behind a link target and sizes it to at
// most maxCols terminal columns. maxCols is zero when the width is unbounded.
type ImageResolver interface {
	Resolve(ctx context.Context, target string, maxCols int) (*imgproto.Image, error)
}

// RenderRequest configures Render and RenderEvents.
type RenderRequest struct {
	Reader io.Reader
	Writer io.Writer
	// Capabilities describes the terminal. Its Width is the wrap width;
	// zero disables wrapping.
	Capabilities termcap.Capabilities
	// Theme defaults to DefaultTheme.
	Theme Theme
	// Base is the directory or http(s) URL relative link targets resolve
	// against.
	Base string
	// Resolver loads images. Without one, images render as text.
	Resolver ImageResolver
	// Highlighter defaults to highlight.Default.
	Highlighter *highlight.Highlighter
	Options     []RenderOption
}

// Result reports the outcome of a render that completed.
type Result struct {
	// Warnings lists elements that were rendered in degraded form.
	Warnings []Warning
}

// Render parses Markdown from req.Reader and writes it to req.Writer.
func Render(ctx context.Context, req RenderRequest) (Result, error) {
	if req.Reader == nil {
		return Result{}, fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return Result{}, fmt.Errorf("render: writer is nil")
	}
	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return Result{}, fmt.Errorf("render: read input: %w", err)
	}
	if err := ValidateInput(src); err != nil {
		return Result{}, fmt.Errorf("render: %w", err)
	}
	cfg := buildConfig(req.Options)
	if !cfg.frontMatter {
		src = stripFrontMatter(src)
	}
	return RenderEvents(ctx, req, markdown.Parse(src))
}

// RenderEvents renders an event stream to req.Writer; req.Reader is not
// used. The returned error is a *RenderError when rendering stopped early.
func RenderEvents(ctx context.Context, req RenderRequest, events event.Reader) (Result, error) {
	if events == nil {
		return Result{}, fmt.Errorf("render: events is nil")
	}
	if req.Writer == nil {
		return Result{}, fmt.Errorf("render: writer is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	w := writerPool.Get().(*Writer)
	w.Reset(req.Writer, req.Capabilities.Width)
	defer func() {
		w.Reset(nil, 0)
		writerPool.Put(w)
	}()
	e := newEngine(ctx, req, w)
	err := e.run(events)
	return Result{Warnings: e.warnings}, err
}

// Events parses Markdown and returns its event stream, dropping front
// matter the same way Render does.
func Events(src []byte, opts ...RenderOption) (event.Reader, error) {
	if err := ValidateInput(src); err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	if !buildConfig(opts).frontMatter {
		src = stripFrontMatter(src)
	}
	return markdown.Parse(src), nil
}

func buildConfig(opts []RenderOption) renderConfig {
	cfg := defaultRenderConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
