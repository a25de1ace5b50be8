package mdtty

// RenderOption configures rendering behavior.
type RenderOption func(*renderConfig)

type renderConfig struct {
	linkRefs       bool
	codeBorder     bool
	headingMarkers bool
	frontMatter    bool
}

func defaultRenderConfig() renderConfig {
	return renderConfig{codeBorder: true, headingMarkers: true}
}

// WithLinkReferences collects link targets as numbered references printed
// before the next top-level heading and at the end of the document, instead
// of printing each target inline. It only applies when hyperlinks are off.
func WithLinkReferences(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.linkRefs = enabled
	}
}

// WithCodeBorder draws a rule above and below fenced code blocks.
func WithCodeBorder(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.codeBorder = enabled
	}
}

// WithHeadingMarkers prefixes headings with one '#' per level.
func WithHeadingMarkers(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.headingMarkers = enabled
	}
}

// WithFrontMatter keeps a leading YAML front matter block as document text.
// By default it is dropped.
func WithFrontMatter(keep bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.frontMatter = keep
	}
}
