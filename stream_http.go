package mdtty

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"pkt.systems/mdtty/highlight"
	"pkt.systems/mdtty/termcap"
)

// HTTPRenderRequest configures HTTPRender.
type HTTPRenderRequest struct {
	URL          string
	Client       *http.Client
	Writer       io.Writer
	Capabilities termcap.Capabilities
	Theme        Theme
	// Resolver should resolve relative targets against URL.
	Resolver    ImageResolver
	Highlighter *highlight.Highlighter
	Options     []RenderOption
}

// HTTPRender fetches Markdown over HTTP(S) and renders it with the URL as
// the base for relative links.
func HTTPRender(ctx context.Context, req HTTPRenderRequest) (Result, error) {
	if req.URL == "" {
		return Result{}, fmt.Errorf("render http: URL is required")
	}
	if req.Writer == nil {
		return Result{}, fmt.Errorf("render http: Writer is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	client := req.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("render http: build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return Result{}, fmt.Errorf("render http: unsupported scheme %q", httpReq.URL.Scheme)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("render http: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("render http: status %s", resp.Status)
	}
	return Render(ctx, RenderRequest{
		Reader:       resp.Body,
		Writer:       req.Writer,
		Capabilities: req.Capabilities,
		Theme:        req.Theme,
		Base:         req.URL,
		Resolver:     req.Resolver,
		Highlighter:  req.Highlighter,
		Options:      req.Options,
	})
}
