package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
)

// DefaultMaxBytes caps the size of one fetched resource.
const DefaultMaxBytes = 32 << 20

// Fetcher downloads the bytes behind a remote URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches resources with an http.Client.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// Fetch performs a GET request. 404 and 410 responses report NotFound.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch http: build request: %w", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, newError(Unsupported, url, fmt.Errorf("fetch http: unsupported scheme %q", req.URL.Scheme))
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch http: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, newError(NotFound, url, fmt.Errorf("fetch http: status %s", resp.Status))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch http: status %s", resp.Status)
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("fetch http: read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("fetch http: body exceeds %d bytes", limit)
	}
	return data, nil
}

// CommandFetcher fetches resources by running an external program that
// writes the body to stdout, curl by default.
type CommandFetcher struct {
	// Command is the program to run; empty means curl.
	Command string
	// Args precede the URL; nil means curl's -fsSL.
	Args []string
}

var errEmptyCommand = errors.New("fetch command: no program")

// Fetch runs the command with the URL as last argument.
func (f *CommandFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	name := f.Command
	args := f.Args
	if name == "" {
		name = "curl"
		if args == nil {
			args = []string{"-fsSL"}
		}
	}
	if strings.TrimSpace(name) == "" {
		return nil, errEmptyCommand
	}
	argv := make([]string, 0, len(args)+2)
	argv = append(argv, args...)
	argv = append(argv, "--", url)
	cmd := exec.CommandContext(ctx, name, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("fetch command %s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("fetch command %s: %w", name, err)
	}
	return stdout.Bytes(), nil
}
