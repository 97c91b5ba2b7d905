package analysis

import (
	"context"
	"strings"

	"github.com/matzehuels/composer-lsp/pkg/deps"
	"github.com/matzehuels/composer-lsp/pkg/errors"
	"github.com/matzehuels/composer-lsp/pkg/observability"
)

// Hover is the rendered description of the dependency on a line.
type Hover struct {
	Package     string
	Version     string // Version of the described release
	Markdown    string
	Line        int
	StartColumn int
	EndColumn   int
}

// Action names an external package manager command offered for a line.
type Action struct {
	Title     string
	Command   string
	Arguments []string
}

// Commands understood by [Action].
const (
	CommandInstall = "composer.install"
	CommandUpdate  = "composer.update"
)

// Hover describes the dependency declared on line of path.
//
// The release described is the one matching the installed version from the
// lock file, or the first release the registry lists. Missing description
// and homepage fall back to the first release's. Errors with a recoverable
// code (see [errors.Recoverable]) mean there is nothing to show.
func (a *Analyzer) Hover(ctx context.Context, path string, line int) (*Hover, error) {
	snap, dep, pkg, err := a.lookup(ctx, path, line)
	observability.Analysis().OnQuery(ctx, "hover", path, line, err)
	if err != nil {
		return nil, err
	}

	rel := selectRelease(pkg, snap.Installed(dep.Name))
	first := pkg.Releases[0]

	description := rel.Description
	if description == "" {
		description = first.Description
	}
	homepage := rel.Homepage
	if homepage == "" {
		homepage = first.Homepage
	}

	var b strings.Builder
	b.WriteString("**" + dep.Name + "**")
	if rel.Version != "" {
		b.WriteString(" `" + rel.Version + "`")
	}
	if description != "" {
		b.WriteString("\n\n" + description)
	}
	if homepage != "" {
		b.WriteString("\n\nHomepage: " + homepage)
	}

	return &Hover{
		Package:     dep.Name,
		Version:     rel.Version,
		Markdown:    b.String(),
		Line:        dep.Line,
		StartColumn: dep.Column,
		EndColumn:   dep.EndColumn,
	}, nil
}

// Definition returns the registry page of the dependency declared on line
// of path, taken from the same release [Analyzer.Hover] describes, or from
// the first release when that one has no page.
func (a *Analyzer) Definition(ctx context.Context, path string, line int) (string, error) {
	url, err := a.definition(ctx, path, line)
	observability.Analysis().OnQuery(ctx, "definition", path, line, err)
	return url, err
}

func (a *Analyzer) definition(ctx context.Context, path string, line int) (string, error) {
	snap, dep, pkg, err := a.lookup(ctx, path, line)
	if err != nil {
		return "", err
	}
	if u := selectRelease(pkg, snap.Installed(dep.Name)).RegistryURL; u != "" {
		return u, nil
	}
	if u := pkg.Releases[0].RegistryURL; u != "" {
		return u, nil
	}
	return "", errors.New(errors.ErrCodeNoRelease, "no registry page for %s", dep.Name)
}

// Actions returns the commands offered for the dependency on line: install
// everything when no lock file exists, otherwise update that package.
func (a *Analyzer) Actions(path string, line int) ([]Action, error) {
	snap, dep, err := a.dependencyAt(path, line)
	if err != nil {
		return nil, err
	}
	if !snap.HasLock() {
		return []Action{{Title: "Install all packages", Command: CommandInstall}}, nil
	}
	return []Action{{Title: "Update package", Command: CommandUpdate, Arguments: []string{dep.Name}}}, nil
}

func (a *Analyzer) dependencyAt(path string, line int) (*Snapshot, deps.Dependency, error) {
	snap, ok := a.Snapshot(path)
	if !ok {
		return nil, deps.Dependency{}, errors.New(errors.ErrCodeNoDocument, "no analysis for %s", path)
	}
	dep, ok := snap.Manifest.DependencyAt(line)
	if !ok {
		return nil, deps.Dependency{}, errors.New(errors.ErrCodeNoDependency, "no dependency on line %d", line)
	}
	return snap, dep, nil
}

// lookup resolves line to a dependency and fetches its registry data. A
// failed single fetch falls back to the snapshot's batch result.
func (a *Analyzer) lookup(ctx context.Context, path string, line int) (*Snapshot, deps.Dependency, *deps.Package, error) {
	snap, dep, err := a.dependencyAt(path, line)
	if err != nil {
		return nil, dep, nil, err
	}
	if dep.Platform {
		return nil, dep, nil, errors.New(errors.ErrCodePackageNotFound, "%s is a platform requirement", dep.Name)
	}

	pkg, err := a.registry.Fetch(ctx, dep.Name)
	if err != nil {
		cached, ok := snap.Package(dep.Name)
		if !ok {
			return nil, dep, nil, errors.Wrap(errors.ErrCodePackageNotFound, err, "no registry data for %s", dep.Name)
		}
		a.logger.Debug("single fetch failed, using batch data", "package", dep.Name, "err", err)
		pkg = cached
	}
	if pkg == nil {
		return nil, dep, nil, errors.New(errors.ErrCodePackageNotFound, "no registry data for %s", dep.Name)
	}
	if len(pkg.Releases) == 0 {
		return nil, dep, nil, errors.New(errors.ErrCodeNoRelease, "no releases for %s", dep.Name)
	}
	return snap, dep, pkg, nil
}

// selectRelease picks the release whose normalized version equals the
// installed one, else the first release. pkg must have releases.
func selectRelease(pkg *deps.Package, installed string) deps.Release {
	if installed != "" {
		want := deps.NormalizeVersion(installed)
		for _, r := range pkg.Releases {
			if deps.NormalizeVersion(r.Version) == want {
				return r
			}
		}
	}
	return pkg.Releases[0]
}
