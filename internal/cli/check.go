package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-lsp/pkg/analysis"
	"github.com/matzehuels/composer-lsp/pkg/deps"
	"github.com/matzehuels/composer-lsp/pkg/deps/php"
)

// checkCommand creates the check command, a one-shot run of the analysis
// the server performs when a manifest is opened.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [composer.json]",
		Short: "Report dependencies with newer releases",
		Long: `Analyze a composer.json once and print the dependencies that have a newer
release matching their constraint. Installed versions are read from the
composer.lock next to the manifest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "composer.json"
			if len(args) == 1 {
				path = args[0]
			}
			return c.check(cmd, path)
		},
	}
}

func (c *CLI) check(cmd *cobra.Command, path string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return err
	}

	// The analyzer turns a broken manifest into an empty result; here it is
	// an error.
	parser, err := php.Language.Manifest(path, deps.Options{})
	if err != nil {
		return err
	}
	if _, err := parser.Parse(path, nil); err != nil {
		return err
	}

	installTraceHooks(c.Logger)
	a, err := newAnalyzer(cfg, c.Logger)
	if err != nil {
		return err
	}

	start := time.Now()
	stop := spin(cmd.Context(), cmd.ErrOrStderr(), "Querying "+cfg.APIURL)
	snap, err := a.Refresh(cmd.Context(), path, nil)
	stop()
	if err != nil {
		return err
	}
	logElapsed(c.Logger, start, "checked manifest", "dependencies", len(snap.Manifest.Dependencies))

	printReport(cmd.OutOrStdout(), snap)
	return nil
}

// printReport prints one row per registry dependency followed by a summary.
func printReport(w io.Writer, snap *analysis.Snapshot) {
	updates := make(map[string]analysis.Diagnostic, len(snap.Diagnostics))
	for _, d := range snap.Diagnostics {
		updates[d.Package] = d
	}

	fmt.Fprintln(w, StyleTitle.Render(snap.Path))
	var outdated, current, missing int
	for _, dep := range snap.Manifest.Dependencies {
		if dep.Platform {
			continue
		}
		installed := snap.Installed(dep.Name)
		if installed == "" {
			installed = "-"
		}
		row := "  " + styleName.Render(dep.Name) + styleConstraint.Render(dep.Constraint) + styleInstalled.Render(installed)

		_, fetched := snap.Package(dep.Name)
		switch d, ok := updates[dep.Name]; {
		case ok:
			row += StyleDim.Render(iconArrow+" ") + StyleWarning.Render(d.Version)
			outdated++
		case !fetched:
			row += StyleDim.Render("not found")
			missing++
		default:
			row += StyleSuccess.Render("up to date")
			current++
		}
		fmt.Fprintln(w, row)
	}

	fmt.Fprintln(w)
	if outdated == 0 {
		printSummary(w, summaryOK, "%d packages up to date", current)
	} else {
		printSummary(w, summaryUpdates, "%d of %d packages have updates", outdated, outdated+current+missing)
	}
	if missing > 0 {
		printSummary(w, summaryNote, "%d not found on the registry", missing)
	}
}
