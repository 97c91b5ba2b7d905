package php

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/composer-lsp/pkg/deps"
	"github.com/matzehuels/composer-lsp/pkg/errors"
)

const lockFileName = "composer.lock"

// ComposerLock reads the composer.lock file that sits next to a manifest.
type ComposerLock struct {
	logger func(string, ...any)
}

// LockPath returns the composer.lock path in the manifest's directory.
func (l *ComposerLock) LockPath(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), lockFileName)
}

// Read decodes the lock file for manifestPath.
//
// A missing lock file returns (nil, nil). A lock that cannot be decoded
// returns an ErrCodeInvalidLock error. Entries from packages and
// packages-dev are merged, and a later entry for the same name replaces an
// earlier one.
func (l *ComposerLock) Read(manifestPath string) (*deps.Lock, error) {
	path := l.LockPath(manifestPath)
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLock, err, "open %s", path)
	}
	defer f.Close()

	var raw lockFile
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLock, err, "decode %s", path)
	}

	lock := &deps.Lock{
		Path:     path,
		Packages: make(map[string]deps.InstalledPackage, len(raw.Packages)+len(raw.PackagesDev)),
	}
	for _, entry := range append(raw.Packages, raw.PackagesDev...) {
		var name, version string
		if json.Unmarshal(entry.Name, &name) != nil || json.Unmarshal(entry.Version, &version) != nil || name == "" {
			l.log("skipping lock entry without string name/version in %s", path)
			continue
		}
		lock.Packages[name] = deps.InstalledPackage{Name: name, Version: deps.NormalizeVersion(version)}
	}
	return lock, nil
}

func (l *ComposerLock) log(format string, args ...any) {
	if l.logger != nil {
		l.logger(format, args...)
	}
}

type lockFile struct {
	Packages    []lockEntry `json:"packages"`
	PackagesDev []lockEntry `json:"packages-dev"`
}

type lockEntry struct {
	Name    json.RawMessage `json:"name"`
	Version json.RawMessage `json:"version"`
}
