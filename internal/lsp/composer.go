package lsp

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/composer-lsp/pkg/errors"
)

// unresolvable is what Composer prints when no installable set of packages
// satisfies the manifest. The command still exits successfully in some
// versions, so the output is checked as well.
const unresolvable = "Your requirements could not be resolved to an installable set of packages"

// ErrUnresolvable is returned by [Composer] when the solver gave up.
var ErrUnresolvable = errors.New(errors.ErrCodeCommandFailed, "composer dependencies could not be resolved")

// Runner runs package manager commands for a project directory.
type Runner interface {
	Install(ctx context.Context, dir string) error
	Update(ctx context.Context, dir, pkg string) error
}

// Composer runs the composer binary.
type Composer struct {
	Bin    string // Executable name or path (default "composer")
	Logger func(string, ...any)
}

func (c *Composer) Install(ctx context.Context, dir string) error {
	return c.run(ctx, dir, "install")
}

func (c *Composer) Update(ctx context.Context, dir, pkg string) error {
	return c.run(ctx, dir, "update", pkg)
}

func (c *Composer) run(ctx context.Context, dir string, args ...string) error {
	bin := c.Bin
	if bin == "" {
		bin = "composer"
	}
	argv := append([]string{"--working-dir=" + dir}, args...)
	if c.Logger != nil {
		c.Logger("running %s %s", bin, strings.Join(argv, " "))
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, argv...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if bytes.Contains(stderr.Bytes(), []byte(unresolvable)) {
			return ErrUnresolvable
		}
		return errors.Wrap(errors.ErrCodeCommandFailed, err, "composer %s: %s", args[0], lastLine(stderr.String()))
	}
	if bytes.Contains(stderr.Bytes(), []byte(unresolvable)) {
		return ErrUnresolvable
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
