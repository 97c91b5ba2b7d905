package deps

import (
	"slices"

	"github.com/Masterminds/semver/v3"
)

// Candidate is a release that satisfies a constraint.
type Candidate struct {
	Release Release
	Version *semver.Version
}

// Matching returns the releases that satisfy constraint, sorted by semantic
// precedence, highest first. Releases whose version does not parse are
// skipped. An unparsable constraint matches nothing.
func Matching(releases []Release, constraint string) []Candidate {
	c, err := ParseConstraint(constraint)
	if err != nil {
		return nil
	}

	var out []Candidate
	for _, r := range releases {
		v, err := semver.NewVersion(NormalizeVersion(r.Version))
		if err != nil {
			continue
		}
		if c.Check(v) {
			out = append(out, Candidate{Release: r, Version: v})
		}
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		return b.Version.Compare(a.Version)
	})
	return out
}

// LatestUpdate returns the version to offer for a dependency declared with
// constraint, given the releases a registry publishes and the installed
// version ("" when unknown).
//
// Without an installed version the highest matching release is returned.
// With one, the highest matching release strictly newer than it is returned,
// or false when the installed version is already the newest match. An
// installed version that does not parse is treated as unknown.
func LatestUpdate(releases []Release, constraint, installed string) (string, bool) {
	matches := Matching(releases, constraint)
	if len(matches) == 0 {
		return "", false
	}

	best := matches[0]
	if installed == "" {
		return best.Release.Version, true
	}
	current, err := semver.NewVersion(NormalizeVersion(installed))
	if err != nil {
		return best.Release.Version, true
	}
	if best.Version.GreaterThan(current) {
		return best.Release.Version, true
	}
	return "", false
}
