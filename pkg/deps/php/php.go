package php

import (
	"context"
	"regexp"
	"strings"

	"github.com/matzehuels/composer-lsp/pkg/deps"
	"github.com/matzehuels/composer-lsp/pkg/httputil"
	"github.com/matzehuels/composer-lsp/pkg/integrations/packagist"
)

var Language = &deps.Language{
	Name:            "php",
	DefaultRegistry: "packagist",
	RegistryAliases: map[string]string{"composer": "packagist"},
	NewFetcher:      newFetcher,
	ManifestParsers: manifestParsers,
	NewLockReader:   newLockReader,
}

func manifestParsers(opts deps.Options) []deps.ManifestParser {
	return []deps.ManifestParser{&ComposerJSON{logger: opts.Logger}}
}

func newLockReader(opts deps.Options) deps.LockReader {
	return &ComposerLock{logger: opts.Logger}
}

func newFetcher(cfg deps.RegistryConfig) deps.Fetcher {
	opts := packagist.Options{
		APIURL:     cfg.APIURL,
		WebURL:     cfg.WebURL,
		UserAgent:  cfg.UserAgent,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.Attempts > 0 {
		policy := httputil.DefaultPolicy
		policy.Attempts = cfg.Attempts
		if cfg.RetryDelay > 0 {
			policy.Delay = cfg.RetryDelay
		}
		opts.Retry = &policy
	}
	return fetcher{packagist.NewClient(opts)}
}

type fetcher struct{ *packagist.Client }

func (f fetcher) Fetch(ctx context.Context, name string) (*deps.Package, error) {
	p, err := f.FetchPackage(ctx, name)
	if err != nil {
		return nil, err
	}
	pkg := &deps.Package{Name: p.Name, Releases: make([]deps.Release, 0, len(p.Versions))}
	for _, v := range p.Versions {
		authors := make([]deps.Author, 0, len(v.Authors))
		for _, a := range v.Authors {
			authors = append(authors, deps.Author{Name: strings.TrimSpace(a.Name), Email: a.Email, Homepage: a.Homepage})
		}
		pkg.Releases = append(pkg.Releases, deps.Release{
			Version:           v.Version,
			VersionNormalized: v.VersionNormalized,
			Description:       v.Description,
			Homepage:          v.Homepage,
			Authors:           authors,
			License:           v.License,
			Keywords:          v.Keywords,
			Repository:        v.Repository,
			RegistryURL:       p.URL,
		})
	}
	return pkg, nil
}

var platformPackage = regexp.MustCompile(`^(?:php(?:-64bit|-ipv6|-zts|-debug)?|hhvm|(?:ext|lib)-[a-z0-9](?:[_.-]?[a-z0-9]+)*|composer(?:-(?:plugin|runtime)-api)?)$`)

// IsPlatformPackage reports whether name is a platform requirement (the PHP
// runtime, an extension, a system library or a Composer API version) rather
// than a package a registry serves.
func IsPlatformPackage(name string) bool {
	return platformPackage.MatchString(strings.ToLower(name))
}
