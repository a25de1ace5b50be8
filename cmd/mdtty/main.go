package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/pflag"
	"pkt.systems/psi"
	"pkt.systems/pslog"
	"pkt.systems/version"

	"pkt.systems/mdtty"
	"pkt.systems/mdtty/internal/config"
	"pkt.systems/mdtty/resource"
	"pkt.systems/mdtty/termcap"
)

func init() {
	version.SetDefaultModule("pkt.systems/mdtty")
}

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

type cliOptions struct {
	configPath  string
	listThemes  bool
	outPath     string
	boring      bool
	dumpEvents  bool
	dumpConfig  bool
	showVersion bool
}

func newFlagSet(opts *cliOptions, stderr io.Writer) *pflag.FlagSet {
	defaults := config.Default()
	flags := pflag.NewFlagSet("mdtty", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/mdtty/config.yaml)")
	flags.StringP("theme", "t", defaults.Theme, "Theme name")
	flags.IntP("width", "w", defaults.Width, "Output width override (0 uses terminal width if available)")
	flags.StringP("osc8", "8", defaults.OSC8, "OSC8 hyperlinks: auto|on|off")
	flags.String("color", defaults.Color, "Colors: auto|always|never")
	flags.String("images", defaults.Images, "Inline images: auto|on|off")
	flags.String("terminal", defaults.Terminal, "Terminal: auto|ansi|iterm2|kitty|wezterm|terminology|dumb")
	flags.String("links", defaults.Links, "Links without OSC8: inline|refs")
	flags.String("fetcher", defaults.Fetcher, "Remote resources: http|curl|none")
	flags.Duration("fetch-timeout", defaults.FetchTimeout, "Timeout for remote resources")
	flags.Int("cell-width", defaults.CellWidth, "Terminal cell width in pixels")
	flags.Int("cell-height", defaults.CellHeight, "Terminal cell height in pixels")
	flags.Bool("code-border", defaults.CodeBorder, "Draw rules around fenced code blocks")
	flags.BoolVar(&opts.listThemes, "list-themes", false, "List available themes")
	flags.StringVarP(&opts.outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVarP(&opts.boring, "boring", "b", false, "Plain text: no colors, hyperlinks or images")
	flags.BoolVar(&opts.dumpEvents, "dump-events", false, "Print the parsed event stream instead of rendering")
	flags.BoolVar(&opts.dumpConfig, "dump-config", false, "Print the effective configuration as YAML")
	flags.BoolVarP(&opts.showVersion, "version", "V", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mdtty [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nInputs are files, file:// or http(s):// URLs; without inputs, or with -, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	return flags
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := pslog.Ctx(ctx)
	var opts cliOptions
	flags := newFlagSet(&opts, stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if opts.listThemes {
		printThemes(stdout)
		return 0
	}

	cfg, err := config.Load(opts.configPath, flags)
	if err != nil {
		log.Error("invalid configuration", "err", err)
		return 2
	}
	if opts.dumpConfig {
		if err := config.Dump(stdout, cfg); err != nil {
			log.Error("dump config failed", "err", err)
			return 1
		}
		return 0
	}

	theme, ok := mdtty.ThemeByName(cfg.Theme)
	if !ok {
		log.Error("unknown theme", "theme", cfg.Theme)
		printThemes(stderr)
		return 2
	}

	inputs, err := parseInputs(flags.Args())
	if err != nil {
		log.Error("invalid input", "err", err)
		return 2
	}

	writer, closeOut, err := resolveOutput(opts.outPath, stdout)
	if err != nil {
		log.Error("open output failed", "err", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	r := &renderer{
		stdin:   stdin,
		out:     writer,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		fetcher: newFetcher(cfg),
		theme:   theme,
		options: []mdtty.RenderOption{
			mdtty.WithLinkReferences(cfg.Links == "refs"),
			mdtty.WithCodeBorder(cfg.CodeBorder),
		},
	}

	if opts.dumpEvents {
		for _, in := range inputs {
			if err := r.dumpEvents(ctx, in); err != nil {
				log.Error("dump events failed", "input", in.name, "err", err)
				return 1
			}
		}
		return 0
	}

	tty := isTerminal(writer)
	r.caps = capabilities(cfg, os.Getenv, tty, resolveWidth(cfg.Width, writer))
	if opts.boring {
		r.caps = termcap.None(r.caps.Width)
		r.theme = mdtty.PlainTheme()
	}
	log.Debug("terminal capabilities",
		"terminal", r.caps.Identity.String(),
		"colors", r.caps.Colors.String(),
		"images", r.caps.Images.String(),
		"hyperlinks", r.caps.Hyperlinks,
		"width", r.caps.Width,
	)

	for i, in := range inputs {
		if i > 0 {
			if _, err := io.WriteString(writer, "\n"); err != nil {
				log.Error("write failed", "err", err)
				return 1
			}
		}
		if err := r.render(ctx, in); err != nil {
			log.Error("render failed", "input", in.name, "err", err)
			return 1
		}
	}
	return 0
}

// capabilities derives the terminal description from the configuration.
// Without an explicit terminal, output that is not a terminal is plain.
func capabilities(cfg config.Config, getenv func(string) string, tty bool, width int) termcap.Capabilities {
	var caps termcap.Capabilities
	if cfg.Terminal == "auto" || cfg.Terminal == "" {
		if tty {
			caps = termcap.Detect(getenv, width)
		} else {
			caps = termcap.None(width)
		}
	} else {
		id, err := termcap.ParseIdentity(cfg.Terminal)
		if err != nil {
			id = termcap.ANSI
		}
		caps = termcap.ForIdentity(id, width)
	}

	switch cfg.Color {
	case "always":
		if caps.Colors == termcap.ColorNone {
			caps = caps.WithColors(termcap.Color16)
		}
	case "never":
		caps = caps.WithColors(termcap.ColorNone)
	}
	switch cfg.OSC8 {
	case "on":
		caps = caps.WithHyperlinks(true)
	case "off":
		caps = caps.WithHyperlinks(false)
	}
	switch cfg.Images {
	case "off":
		caps = caps.WithoutImages()
	case "auto":
		if !tty {
			caps = caps.WithoutImages()
		}
	}
	return caps.WithCellSize(cfg.CellWidth, cfg.CellHeight)
}

func newFetcher(cfg config.Config) resource.Fetcher {
	switch cfg.Fetcher {
	case "none":
		return nil
	case "curl":
		args := []string{"-fsSL"}
		if cfg.FetchTimeout > 0 {
			args = append(args, "--max-time", strconv.FormatFloat(cfg.FetchTimeout.Seconds(), 'f', -1, 64))
		}
		return &resource.CommandFetcher{Command: "curl", Args: args}
	default:
		return &resource.HTTPFetcher{Client: &http.Client{Timeout: cfg.FetchTimeout}}
	}
}

type renderer struct {
	stdin   io.Reader
	out     io.Writer
	client  *http.Client
	fetcher resource.Fetcher
	caps    termcap.Capabilities
	theme   mdtty.Theme
	options []mdtty.RenderOption
}

func (r *renderer) resolver(base string) mdtty.ImageResolver {
	if r.caps.Images == termcap.ImageNone {
		return nil
	}
	return resource.NewResolver(resource.Config{
		Base:       base,
		Fetcher:    r.fetcher,
		CellWidth:  r.caps.CellWidth,
		CellHeight: r.caps.CellHeight,
		Downscale:  true,
	})
}

func (r *renderer) render(ctx context.Context, in input) error {
	var (
		res mdtty.Result
		err error
	)
	if in.url != "" && r.useHTTP() {
		res, err = mdtty.HTTPRender(ctx, mdtty.HTTPRenderRequest{
			URL:          in.url,
			Client:       r.client,
			Writer:       r.out,
			Capabilities: r.caps,
			Theme:        r.theme,
			Resolver:     r.resolver(in.url),
			Options:      r.options,
		})
	} else {
		reader, closer, openErr := r.open(ctx, in)
		if openErr != nil {
			return openErr
		}
		res, err = mdtty.Render(ctx, mdtty.RenderRequest{
			Reader:       reader,
			Writer:       r.out,
			Capabilities: r.caps,
			Theme:        r.theme,
			Base:         in.base(),
			Resolver:     r.resolver(in.base()),
			Options:      r.options,
		})
		if closer != nil {
			_ = closer.Close()
		}
	}
	log := pslog.Ctx(ctx)
	for _, w := range res.Warnings {
		log.Warn("image rendered as text", "input", in.name, "target", w.Target, "err", w.Err)
	}
	return err
}

func (r *renderer) useHTTP() bool {
	_, ok := r.fetcher.(*resource.HTTPFetcher)
	return ok
}

func (r *renderer) dumpEvents(ctx context.Context, in input) error {
	reader, closer, err := r.open(ctx, in)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	src, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read %s: %w", in.name, err)
	}
	events, err := mdtty.Events(src, r.options...)
	if err != nil {
		return err
	}
	for {
		ev, err := events.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(r.out, ev.String()); err != nil {
			return err
		}
	}
}

func printThemes(w io.Writer) {
	names := mdtty.AvailableThemes()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}
