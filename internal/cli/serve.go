package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-lsp/internal/lsp"
	"github.com/matzehuels/composer-lsp/pkg/buildinfo"
)

// serveCommand creates the serve command, which runs the language server.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server over stdin/stdout",
		Long: `Run the language server over stdin/stdout.

stdout carries the protocol, so logs go to stderr or, with --log-file or
` + logEnv + `, to a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd)
		},
	}
	// Editors commonly pass --stdio; it is the only transport.
	cmd.Flags().Bool("stdio", true, "communicate over stdin/stdout")
	return cmd
}

func (c *CLI) serve(cmd *cobra.Command) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	logger := c.Logger
	if path := c.logDestination(cfg); path != "" {
		f, err := openLogFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = newLogger(f, c.Logger.GetLevel())
	}

	installTraceHooks(logger)
	a, err := newAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	srv, err := lsp.NewServer(lsp.Options{
		Analyzer: a,
		Runner: &lsp.Composer{
			Bin:    cfg.ComposerBin,
			Logger: func(format string, args ...any) { logger.Debugf(format, args...) },
		},
		Logger:     logger,
		Name:       appName,
		Version:    buildinfo.Version,
		WatchLocks: cfg.WatchLock,
	})
	if err != nil {
		return err
	}
	return srv.Serve(cmd.Context(), lsp.Stdio())
}

// logDestination picks the log file: --log-file, then the environment, then
// the config file. Empty means stderr.
func (c *CLI) logDestination(cfg Config) string {
	if c.logFile != "" {
		return c.logFile
	}
	if v := os.Getenv(logEnv); v != "" {
		return v
	}
	return cfg.LogFile
}
