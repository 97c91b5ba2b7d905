// Package cli implements the composer-lsp command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-lsp/pkg/analysis"
	"github.com/matzehuels/composer-lsp/pkg/buildinfo"
	"github.com/matzehuels/composer-lsp/pkg/deps"
	"github.com/matzehuels/composer-lsp/pkg/deps/php"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "composer-lsp"

	// logEnv names a log file, as --log-file does.
	logEnv = "COMPOSER_LSP_LOG"
)

// Log levels for New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	logFile    string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level == log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
// Without a subcommand it runs the language server.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "composer-lsp reports Composer dependency updates to your editor",
		Long:         `composer-lsp is a language server for composer.json. It marks dependencies with newer releases on Packagist, shows package details on hover, links to the package page and runs composer install or update from code actions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/"+appName+"/config.toml)")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "write logs to this file instead of stderr (env "+logEnv+")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration and applies its log level unless
// --verbose already raised it.
func (c *CLI) config() (Config, error) {
	cfg, err := loadConfig(c.configFile)
	if err != nil {
		return cfg, err
	}
	if !c.verbose {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			c.Logger.SetLevel(level)
		}
	}
	c.Logger.Debug("configuration loaded", "source", c.configSource())
	return cfg, nil
}

// =============================================================================
// Analyzer Factory
// =============================================================================

// newAnalyzer wires the Packagist registry and the PHP language into an
// analyzer configured from cfg.
func newAnalyzer(cfg Config, logger *log.Logger) (*analysis.Analyzer, error) {
	severity, err := analysis.ParseSeverity(cfg.Severity)
	if err != nil {
		return nil, err
	}
	registry, err := php.Language.Registry("", deps.RegistryConfig{
		APIURL:    cfg.APIURL,
		WebURL:    cfg.WebURL,
		UserAgent: appName + "/" + buildinfo.Version,
	}, deps.Options{
		MaxConcurrency: cfg.MaxConcurrency,
		Logger:         func(format string, args ...any) { logger.Debugf(format, args...) },
	})
	if err != nil {
		return nil, err
	}
	return analysis.New(analysis.Options{
		Language:       php.Language,
		Registry:       registry,
		Severity:       severity,
		RefreshTimeout: cfg.RefreshTimeout.Duration,
		Logger:         logger,
	})
}
