// Package resource turns image references into decoded images sized for
// the terminal.
package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nfnt/resize"
	"golang.org/x/sync/singleflight"
	"pkt.systems/pslog"

	"pkt.systems/mdtty/imgproto"
	"pkt.systems/mdtty/termcap"
)

// Decoder turns raw bytes into pixels. The format name is the one
// image.Decode reports.
type Decoder interface {
	Decode(data []byte) (image.Image, string, error)
}

// StdDecoder decodes PNG, JPEG and GIF with the image package.
type StdDecoder struct{}

func (StdDecoder) Decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

// Config configures a Resolver.
type Config struct {
	// Base is the directory or http(s) URL relative targets resolve against.
	Base string
	// Fetcher handles remote targets; nil restricts the resolver to local files.
	Fetcher Fetcher
	// Decoder defaults to StdDecoder.
	Decoder Decoder
	// CellWidth and CellHeight are the pixel size of a terminal cell.
	CellWidth  int
	CellHeight int
	// Downscale shrinks pixel buffers larger than their cell footprint.
	Downscale bool
}

type loaded struct {
	source string
	data   []byte
	format string
	pixels image.Image
	err    error
}

// Resolver resolves image targets. It caches every outcome for its lifetime
// so a target repeated within one document is loaded once, and it is safe
// for concurrent use.
type Resolver struct {
	cfg   Config
	base  *url.URL
	mu    sync.Mutex
	cache map[string]*loaded
	group singleflight.Group
}

// NewResolver returns a resolver for cfg.
func NewResolver(cfg Config) *Resolver {
	if cfg.Decoder == nil {
		cfg.Decoder = StdDecoder{}
	}
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = termcap.DefaultCellWidth
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = termcap.DefaultCellHeight
	}
	r := &Resolver{cfg: cfg, cache: make(map[string]*loaded)}
	if u, err := url.Parse(cfg.Base); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		r.base = u
	}
	return r
}

// Resolve loads target and computes its footprint, at most maxCols columns
// wide. maxCols <= 0 leaves the width uncapped.
func (r *Resolver) Resolve(ctx context.Context, target string, maxCols int) (*imgproto.Image, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	location, remote, err := r.locate(target)
	if err != nil {
		return nil, err
	}
	log := pslog.Ctx(ctx).With("target", target)
	if remote && r.cfg.Fetcher == nil {
		return nil, newError(Unsupported, target, errors.New("remote resources are disabled"))
	}
	entry := r.load(ctx, location, remote)
	if entry.err != nil {
		log.Debug("image resolve failed", "location", location, "err", entry.err)
		return nil, wrap(FetchFailed, target, entry.err)
	}
	bounds := entry.pixels.Bounds()
	cols, rows := Footprint(bounds.Dx(), bounds.Dy(), r.cfg.CellWidth, r.cfg.CellHeight, maxCols)
	img := &imgproto.Image{
		Source:  entry.source,
		Data:    entry.data,
		Format:  entry.format,
		Pixels:  entry.pixels,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Columns: cols,
		Rows:    rows,
	}
	if r.cfg.Downscale {
		maxW, maxH := uint(cols*r.cfg.CellWidth), uint(rows*r.cfg.CellHeight)
		if uint(bounds.Dx()) > maxW || uint(bounds.Dy()) > maxH {
			img.Pixels = resize.Thumbnail(maxW, maxH, entry.pixels, resize.Bicubic)
		}
	}
	log.Debug("image resolved", "location", location, "format", img.Format, "columns", cols, "rows", rows)
	return img, nil
}

func (r *Resolver) load(ctx context.Context, location string, remote bool) *loaded {
	r.mu.Lock()
	if entry, ok := r.cache[location]; ok {
		r.mu.Unlock()
		return entry
	}
	r.mu.Unlock()
	v, _, _ := r.group.Do(location, func() (any, error) {
		entry := r.fetchAndDecode(ctx, location, remote)
		r.mu.Lock()
		r.cache[location] = entry
		r.mu.Unlock()
		return entry, nil
	})
	return v.(*loaded)
}

func (r *Resolver) fetchAndDecode(ctx context.Context, location string, remote bool) *loaded {
	entry := &loaded{source: location}
	var data []byte
	var err error
	if remote {
		data, err = r.cfg.Fetcher.Fetch(ctx, location)
		if err != nil {
			entry.err = wrap(FetchFailed, location, err)
			return entry
		}
	} else {
		data, err = os.ReadFile(location)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				entry.err = newError(NotFound, location, err)
			} else {
				entry.err = newError(FetchFailed, location, err)
			}
			return entry
		}
	}
	if isSVG(data) {
		entry.err = newError(Unsupported, location, errors.New("svg images are not supported"))
		return entry
	}
	pixels, format, err := r.cfg.Decoder.Decode(data)
	if err != nil {
		entry.err = newError(DecodeFailed, location, err)
		return entry
	}
	if b := pixels.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		entry.err = newError(DecodeFailed, location, fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy()))
		return entry
	}
	entry.data = data
	entry.format = format
	entry.pixels = pixels
	return entry
}

// locate maps a target to an absolute path or URL and reports whether it
// must be fetched remotely.
func (r *Resolver) locate(target string) (string, bool, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false, newError(NotFound, target, errors.New("empty image target"))
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && len(u.Scheme) == 1) {
		// Unparsable targets and Windows drive letters are plain paths.
		return r.localPath(target), false, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), true, nil
	case "file":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		return filepath.FromSlash(p), false, nil
	case "":
		if r.base != nil {
			return r.base.ResolveReference(u).String(), true, nil
		}
		p := u.Path
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
		return r.localPath(p), false, nil
	default:
		return "", false, newError(Unsupported, target, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
}

func (r *Resolver) localPath(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	base := r.cfg.Base
	if base == "" {
		if wd, err := os.Getwd(); err == nil {
			base = wd
		}
	}
	return filepath.Join(base, p)
}

func isSVG(data []byte) bool {
	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "image/svg") {
		return true
	}
	if !strings.HasPrefix(ct, "text/") {
		return false
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// Footprint computes the terminal cell size of an image of wPx by hPx
// pixels. The width is capped at maxCols when maxCols > 0 and the aspect
// ratio is kept. Both results are at least 1 for a non-empty image.
func Footprint(wPx, hPx, cellW, cellH, maxCols int) (cols, rows int) {
	if wPx <= 0 || hPx <= 0 {
		return 0, 0
	}
	if cellW <= 0 {
		cellW = termcap.DefaultCellWidth
	}
	if cellH <= 0 {
		cellH = termcap.DefaultCellHeight
	}
	cols = (wPx + cellW - 1) / cellW
	scaledW := wPx
	if maxCols > 0 && cols > maxCols {
		cols = maxCols
		scaledW = cols * cellW
	}
	num := scaledW * hPx
	den := wPx * cellH
	rows = (num + den - 1) / den
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}
