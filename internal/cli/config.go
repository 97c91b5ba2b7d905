package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-lsp/pkg/analysis"
	"github.com/matzehuels/composer-lsp/pkg/deps"
	pkgerrors "github.com/matzehuels/composer-lsp/pkg/errors"
	"github.com/matzehuels/composer-lsp/pkg/integrations/packagist"
)

// Config is the file-backed configuration. Command-line flags override it.
type Config struct {
	APIURL         string   `toml:"api_url"`
	WebURL         string   `toml:"web_url"`
	RefreshTimeout duration `toml:"refresh_timeout"`
	Severity       string   `toml:"severity"`
	ComposerBin    string   `toml:"composer_bin"`
	LogLevel       string   `toml:"log_level"`
	LogFile        string   `toml:"log_file"`
	MaxConcurrency int      `toml:"max_concurrency"`
	WatchLock      bool     `toml:"watch_lock"`
}

// duration reads and writes time.Duration as a string such as "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func defaultConfig() Config {
	return Config{
		APIURL:         packagist.DefaultAPIURL,
		WebURL:         packagist.DefaultWebURL,
		RefreshTimeout: duration{30 * time.Second},
		Severity:       analysis.SeverityWarning.String(),
		ComposerBin:    "composer",
		LogLevel:       log.InfoLevel.String(),
		MaxConcurrency: deps.DefaultMaxConcurrency,
		WatchLock:      true,
	}
}

// configPath returns the config file location using the XDG standard
// (~/.config/composer-lsp/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path over the defaults. An empty path selects the
// default location, where a missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return cfg, fmt.Errorf("config %s: unknown keys %v", path, keys)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	for _, u := range []string{c.APIURL, c.WebURL} {
		if err := pkgerrors.ValidateURL(u); err != nil {
			return err
		}
	}
	if _, err := analysis.ParseSeverity(c.Severity); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RefreshTimeout.Duration < 0 {
		return fmt.Errorf("refresh_timeout must not be negative")
	}
	return nil
}

// configCommand prints the effective configuration.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), c.configSource(), cfg)
		},
	}
}

func (c *CLI) configSource() string {
	if c.configFile != "" {
		return c.configFile
	}
	path, err := configPath()
	if err != nil {
		return "(defaults)"
	}
	if _, err := os.Stat(path); err != nil {
		return path + " (not found, using defaults)"
	}
	return path
}

func printConfig(w io.Writer, source string, cfg Config) error {
	fmt.Fprintln(w, StyleDim.Render("# "+source))
	return toml.NewEncoder(w).Encode(cfg)
}
