package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

const maxPackageNameLen = 256

// forbidden lists substrings that would change the meaning of a registry
// URL once a name is interpolated into it.
var forbidden = []struct{ seq, what string }{
	{"..", "parent directory"},
	{"//", "empty path segment"},
	{"\\", "backslash"},
}

// ValidatePackageName rejects names that are unsafe to place in a registry
// URL: empty or overlong names, control characters (NUL included) and path
// traversal sequences. It knows nothing about any ecosystem's naming rules;
// see [ValidateComposerPackageName].
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxPackageNameLen:
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLen)
	case strings.ContainsFunc(name, unicode.IsControl):
		return New(ErrCodeInvalidPackage, "package name contains control characters")
	}
	for _, f := range forbidden {
		if strings.Contains(name, f.seq) {
			return New(ErrCodeInvalidPackage, "package name contains %s %q", f.what, f.seq)
		}
	}
	return nil
}

// composerName matches vendor/package names as Composer accepts them.
var composerName = regexp.MustCompile(`^[a-z0-9]([_.-]?[a-z0-9]+)*/[a-z0-9](([_.]|-{1,2})?[a-z0-9]+)*$`)

// ValidateComposerPackageName validates a Composer "vendor/package" name.
// Names are compared in lowercase, as Packagist does. Platform requirements
// such as "php" or "ext-json" are not package names and fail.
func ValidateComposerPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if !composerName.MatchString(strings.ToLower(name)) {
		return New(ErrCodeInvalidPackage, "invalid Composer package name: %q", name)
	}
	return nil
}

// ValidateURL checks that rawURL is an absolute http or https URL with a
// host, as registry endpoints must be.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}
