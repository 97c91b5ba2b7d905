package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid vendor/package", "symfony/console", false},
		{"valid with dash", "php-http/guzzle7-adapter", false},
		{"valid with underscore", "my_vendor/my_package", false},
		{"valid with dot", "vendor/my.package", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"carriage return", "foo\rbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateComposerPackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "monolog/monolog", false},
		{"dashes", "php-http/guzzle7-adapter", false},
		{"dots", "vendor/package.name", false},
		{"double dash", "laminas/laminas--component", false},
		{"uppercase is lowered", "Symfony/Console", false},

		{"no vendor", "monolog", true},
		{"platform", "php", true},
		{"extension", "ext-json", true},
		{"two slashes", "a/b/c", true},
		{"leading dash", "-vendor/pkg", true},
		{"traversal", "../etc/passwd", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComposerPackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComposerPackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("ValidateComposerPackageName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://repo.packagist.org/p2", false},
		{"http", "http://127.0.0.1:8080", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "packagist.org", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no dependency", New(ErrCodeNoDependency, "line 3"), true},
		{"package not found", New(ErrCodePackageNotFound, "a/b"), true},
		{"no release", New(ErrCodeNoRelease, "a/b"), true},
		{"no document", New(ErrCodeNoDocument, "file:///x"), true},
		{"wrapped", Wrap(ErrCodeNoRelease, New(ErrCodeNetwork, "x"), "y"), true},
		{"network", New(ErrCodeNetwork, "timeout"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recoverable(tt.err); got != tt.want {
				t.Errorf("Recoverable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeNotManifest,
		ErrCodeInvalidManifest,
		ErrCodeInvalidLock,
		ErrCodeInvalidPackage,
		ErrCodeInvalidConstraint,
		ErrCodeNotFound,
		ErrCodeNoDependency,
		ErrCodePackageNotFound,
		ErrCodeNoRelease,
		ErrCodeNoDocument,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeRateLimited,
		ErrCodeCommandFailed,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
