package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/mdtty/termcap"
)

// EnvPrefix prefixes environment overrides, e.g. MDTTY_THEME.
const EnvPrefix = "MDTTY"

// Config is the effective CLI configuration.
type Config struct {
	Theme        string        `mapstructure:"theme" yaml:"theme"`
	Width        int           `mapstructure:"width" yaml:"width"`
	Color        string        `mapstructure:"color" yaml:"color"`
	OSC8         string        `mapstructure:"osc8" yaml:"osc8"`
	Images       string        `mapstructure:"images" yaml:"images"`
	Terminal     string        `mapstructure:"terminal" yaml:"terminal"`
	Links        string        `mapstructure:"links" yaml:"links"`
	Fetcher      string        `mapstructure:"fetcher" yaml:"fetcher"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
	CellWidth    int           `mapstructure:"cell_width" yaml:"cell_width"`
	CellHeight   int           `mapstructure:"cell_height" yaml:"cell_height"`
	CodeBorder   bool          `mapstructure:"code_border" yaml:"code_border"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Theme:        "default",
		Width:        0,
		Color:        "auto",
		OSC8:         "auto",
		Images:       "auto",
		Terminal:     "auto",
		Links:        "inline",
		Fetcher:      "http",
		FetchTimeout: 30 * time.Second,
		CellWidth:    termcap.DefaultCellWidth,
		CellHeight:   termcap.DefaultCellHeight,
		CodeBorder:   true,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mdtty/config.yaml, falling back to
// the platform config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mdtty", "config.yaml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mdtty", "config.yaml"), nil
}

// Keys lists every configuration key in file order.
func Keys() []string {
	return []string{
		"theme",
		"width",
		"color",
		"osc8",
		"images",
		"terminal",
		"links",
		"fetcher",
		"fetch_timeout",
		"cell_width",
		"cell_height",
		"code_border",
	}
}

// FlagName maps a configuration key to its command line flag.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Load merges, from lowest to highest precedence, the defaults, the YAML
// file at path, MDTTY_* environment variables and the flags in flags that
// were set explicitly. An empty path reads DefaultPath when it exists; an
// explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err == nil {
			path = defaultPath
		}
	}

	cfg := Default()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("width", cfg.Width)
	v.SetDefault("color", cfg.Color)
	v.SetDefault("osc8", cfg.OSC8)
	v.SetDefault("images", cfg.Images)
	v.SetDefault("terminal", cfg.Terminal)
	v.SetDefault("links", cfg.Links)
	v.SetDefault("fetcher", cfg.Fetcher)
	v.SetDefault("fetch_timeout", cfg.FetchTimeout)
	v.SetDefault("cell_width", cfg.CellWidth)
	v.SetDefault("cell_height", cfg.CellHeight)
	v.SetDefault("code_border", cfg.CodeBorder)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range Keys() {
			if f := flags.Lookup(FlagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("config: bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		case explicit || !errors.Is(statErr, fs.ErrNotExist):
			return Config{}, fmt.Errorf("config: %w", statErr)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	c.OSC8 = normalizeSwitch(c.OSC8)
	c.Images = normalizeSwitch(c.Images)
	c.Terminal = strings.ToLower(strings.TrimSpace(c.Terminal))
	c.Links = strings.ToLower(strings.TrimSpace(c.Links))
	c.Fetcher = strings.ToLower(strings.TrimSpace(c.Fetcher))
}

func normalizeSwitch(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return "auto"
	case "on", "true", "1", "yes":
		return "on"
	case "off", "false", "0", "no":
		return "off"
	default:
		return value
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Width < 0 {
		return fmt.Errorf("config: width must not be negative, got %d", c.Width)
	}
	if err := oneOf("color", c.Color, "auto", "always", "never"); err != nil {
		return err
	}
	if err := oneOf("osc8", c.OSC8, "auto", "on", "off"); err != nil {
		return err
	}
	if err := oneOf("images", c.Images, "auto", "on", "off"); err != nil {
		return err
	}
	if c.Terminal != "auto" {
		if _, err := termcap.ParseIdentity(c.Terminal); err != nil {
			return fmt.Errorf("config: terminal: %w", err)
		}
	}
	if err := oneOf("links", c.Links, "inline", "refs"); err != nil {
		return err
	}
	if err := oneOf("fetcher", c.Fetcher, "http", "curl", "none"); err != nil {
		return err
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("config: fetch_timeout must not be negative, got %s", c.FetchTimeout)
	}
	if c.CellWidth < 0 || c.CellHeight < 0 {
		return fmt.Errorf("config: cell size must not be negative, got %dx%d", c.CellWidth, c.CellHeight)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("config: %s: expected %s, got %q", key, strings.Join(allowed, "|"), value)
}

// Dump writes cfg as YAML.
func Dump(w io.Writer, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	_, err = w.Write(data)
	return err
}
