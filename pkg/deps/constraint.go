package deps

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/composer-lsp/pkg/errors"
)

// Constraint is a parsed version range: a union of intersections.
//
// Partial versions follow the Cargo reading of each operator, so "<=2.1"
// admits every 2.1.x release and ">2.0" starts at 2.1.0. A prerelease only
// satisfies an intersection that names a prerelease of the same
// major.minor.patch.
type Constraint struct {
	raw  string
	sets [][]comparator
}

type op int

const (
	opEq op = iota
	opNe
	opGt
	opGe
	opLt
	opLe
	opOutside // partial "!=": outside [v, hi)
)

type comparator struct {
	op op
	v  *semver.Version
	hi *semver.Version
}

var stabilityFlags = strings.NewReplacer("@stable", "", "@RC", "", "@rc", "", "@beta", "", "@alpha", "", "@dev", "")

// ParseConstraint parses a Composer version constraint.
//
// Supported: "||" and "|" for alternatives; whitespace or "," for
// intersection; =, ==, !=, >, >=, <, <=, ^ and ~; wildcards *, x and X;
// hyphen ranges "A - B"; stability flags such as "@dev" (ignored).
func ParseConstraint(s string) (*Constraint, error) {
	raw := s
	s = stabilityFlags.Replace(strings.TrimSpace(s))
	if s == "" {
		s = "*"
	}

	c := &Constraint{raw: raw}
	for _, branch := range strings.Split(strings.ReplaceAll(s, "||", "|"), "|") {
		set, err := parseBranch(strings.TrimSpace(branch))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConstraint, err, "parse constraint %q", raw)
		}
		c.sets = append(c.sets, set)
	}
	return c, nil
}

// String returns the constraint as written.
func (c *Constraint) String() string { return c.raw }

// Check reports whether v satisfies the constraint.
func (c *Constraint) Check(v *semver.Version) bool {
	for _, set := range c.sets {
		if matchSet(set, v) {
			return true
		}
	}
	return false
}

func matchSet(set []comparator, v *semver.Version) bool {
	for _, cmp := range set {
		if !cmp.match(v) {
			return false
		}
	}
	if v.Prerelease() == "" {
		return true
	}
	for _, cmp := range set {
		if cmp.v != nil && cmp.v.Prerelease() != "" &&
			cmp.v.Major() == v.Major() && cmp.v.Minor() == v.Minor() && cmp.v.Patch() == v.Patch() {
			return true
		}
	}
	return false
}

func (c comparator) match(v *semver.Version) bool {
	n := v.Compare(c.v)
	switch c.op {
	case opEq:
		return n == 0
	case opNe:
		return n != 0
	case opGt:
		return n > 0
	case opGe:
		return n >= 0
	case opLt:
		return n < 0
	case opLe:
		return n <= 0
	case opOutside:
		return n < 0 || v.Compare(c.hi) >= 0
	}
	return false
}

func parseBranch(branch string) ([]comparator, error) {
	if branch == "" {
		return nil, errors.New(errors.ErrCodeInvalidConstraint, "empty range")
	}
	if lo, hi, ok := strings.Cut(branch, " - "); ok {
		return parseHyphen(strings.TrimSpace(lo), strings.TrimSpace(hi))
	}

	var set []comparator
	for _, term := range terms(branch) {
		cmps, err := parseTerm(term)
		if err != nil {
			return nil, err
		}
		set = append(set, cmps...)
	}
	return set, nil
}

// terms splits an intersection on whitespace and commas, re-attaching
// operators written apart from their version (">= 1.0").
func terms(branch string) []string {
	fields := strings.FieldsFunc(branch, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	var out []string
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if strings.Trim(f, "<>=!^~") == "" && i+1 < len(fields) {
			f += fields[i+1]
			i++
		}
		out = append(out, f)
	}
	return out
}

func parseHyphen(lo, hi string) ([]comparator, error) {
	from, err := parsePartial(lo)
	if err != nil {
		return nil, err
	}
	to, err := parsePartial(hi)
	if err != nil {
		return nil, err
	}
	var set []comparator
	if !from.any() {
		set = append(set, comparator{op: opGe, v: from.floor()})
	}
	switch {
	case to.any():
	case to.patch == nil:
		set = append(set, comparator{op: opLt, v: to.bump()})
	default:
		set = append(set, comparator{op: opLe, v: to.floor()})
	}
	return set, nil
}

func parseTerm(term string) ([]comparator, error) {
	o, rest := splitOp(term)
	p, err := parsePartial(rest)
	if err != nil {
		return nil, err
	}

	if p.any() {
		switch o {
		case "", "=", "==", ">=", "<=", "^", "~":
			return nil, nil
		default:
			return nil, errors.New(errors.ErrCodeInvalidConstraint, "operator %q cannot take a wildcard", o)
		}
	}

	full := p.patch != nil
	switch o {
	case "", "=", "==":
		if full {
			return []comparator{{op: opEq, v: p.floor()}}, nil
		}
		return []comparator{{op: opGe, v: p.floor()}, {op: opLt, v: p.bump()}}, nil
	case "!=":
		if full {
			return []comparator{{op: opNe, v: p.floor()}}, nil
		}
		return []comparator{{op: opOutside, v: p.floor(), hi: p.bump()}}, nil
	case ">":
		if full {
			return []comparator{{op: opGt, v: p.floor()}}, nil
		}
		return []comparator{{op: opGe, v: p.bump()}}, nil
	case ">=":
		return []comparator{{op: opGe, v: p.floor()}}, nil
	case "<":
		return []comparator{{op: opLt, v: p.floor()}}, nil
	case "<=":
		if full {
			return []comparator{{op: opLe, v: p.floor()}}, nil
		}
		return []comparator{{op: opLt, v: p.bump()}}, nil
	case "~":
		upper := version(p.major+1, 0, 0)
		if p.minor != nil {
			upper = version(p.major, *p.minor+1, 0)
		}
		return []comparator{{op: opGe, v: p.floor()}, {op: opLt, v: upper}}, nil
	case "^":
		return []comparator{{op: opGe, v: p.floor()}, {op: opLt, v: p.caretCeiling()}}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConstraint, "unknown operator %q", o)
}

func splitOp(term string) (string, string) {
	for _, o := range []string{"==", "!=", ">=", "<=", ">", "<", "=", "^", "~"} {
		if strings.HasPrefix(term, o) {
			return o, strings.TrimSpace(term[len(o):])
		}
	}
	return "", term
}

// partial is a version with optional minor and patch components.
// A nil component was omitted or written as a wildcard.
type partial struct {
	wildcard bool
	major    uint64
	minor    *uint64
	patch    *uint64
	pre      string
}

func (p partial) any() bool { return p.wildcard }

func (p partial) floor() *semver.Version {
	var minor, patch uint64
	if p.minor != nil {
		minor = *p.minor
	}
	if p.patch != nil {
		patch = *p.patch
	}
	return semver.New(p.major, minor, patch, p.pre, "")
}

// bump returns the first version past the precision that was written:
// 1 -> 2.0.0, 1.2 -> 1.3.0, 1.2.3 -> 1.2.4.
func (p partial) bump() *semver.Version {
	switch {
	case p.minor == nil:
		return version(p.major+1, 0, 0)
	case p.patch == nil:
		return version(p.major, *p.minor+1, 0)
	default:
		return version(p.major, *p.minor, *p.patch+1)
	}
}

func (p partial) caretCeiling() *semver.Version {
	switch {
	case p.major > 0 || p.minor == nil:
		return version(p.major+1, 0, 0)
	case *p.minor > 0 || p.patch == nil:
		return version(0, *p.minor+1, 0)
	default:
		return version(0, 0, *p.patch+1)
	}
}

func version(major, minor, patch uint64) *semver.Version {
	return semver.New(major, minor, patch, "", "")
}

func parsePartial(s string) (partial, error) {
	s = strings.TrimSpace(s)
	if len(s) > 0 && (s[0] == 'v' || s[0] == 'V') {
		s = s[1:]
	}
	if s == "" {
		return partial{}, errors.New(errors.ErrCodeInvalidConstraint, "missing version")
	}

	core, pre := s, ""
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		core = s[:i]
		if s[i] == '-' {
			pre, _, _ = strings.Cut(s[i+1:], "+")
		}
	}

	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return partial{}, errors.New(errors.ErrCodeInvalidConstraint, "too many version components in %q", s)
	}

	var nums []uint64
	wild := false
	for _, part := range parts {
		if part == "*" || part == "x" || part == "X" {
			wild = true
			continue
		}
		if wild {
			return partial{}, errors.New(errors.ErrCodeInvalidConstraint, "version component after wildcard in %q", s)
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return partial{}, errors.Wrap(errors.ErrCodeInvalidConstraint, err, "invalid version %q", s)
		}
		nums = append(nums, n)
	}

	if len(nums) == 0 {
		return partial{wildcard: true}, nil
	}
	p := partial{major: nums[0]}
	if len(nums) > 1 {
		p.minor = &nums[1]
	}
	if len(nums) > 2 {
		p.patch = &nums[2]
		p.pre = pre
	}
	return p, nil
}
