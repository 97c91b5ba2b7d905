package php

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/composer-lsp/pkg/deps"
	"github.com/matzehuels/composer-lsp/pkg/errors"
)

func TestComposerJSON_Supports(t *testing.T) {
	parser := &ComposerJSON{}

	tests := []struct {
		filename string
		want     bool
	}{
		{"composer.json", true},
		{"Composer.json", true},
		{"COMPOSER.JSON", true},
		{"composer.lock", false},
		{"package.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := parser.Supports(tt.filename); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestComposerJSON_Type(t *testing.T) {
	parser := &ComposerJSON{}
	if got := parser.Type(); got != "composer.json" {
		t.Errorf("Type() = %q, want %q", got, "composer.json")
	}
}

func TestComposerJSON_ParseFile(t *testing.T) {
	parser := &ComposerJSON{}
	m, err := parser.Parse(filepath.Join("testdata", "composer.json"), nil)
	require.NoError(t, err)

	type entry struct {
		name  string
		block deps.Block
		line  int
	}
	var got []entry
	for _, d := range m.Dependencies {
		got = append(got, entry{d.Name, d.Block, d.Line})
	}
	want := []entry{
		{"php", deps.BlockRequire, 4},
		{"ext-json", deps.BlockRequire, 5},
		{"monolog/monolog", deps.BlockRequire, 6},
		{"symfony/console", deps.BlockRequire, 7},
		{"guzzlehttp/guzzle", deps.BlockRequire, 8},
		{"phpunit/phpunit", deps.BlockRequireDev, 11},
		{"symfony/var-dumper", deps.BlockRequireDev, 12},
	}
	assert.Equal(t, want, got)

	name, ok := m.Lines.Lookup(7)
	assert.True(t, ok)
	assert.Equal(t, "symfony/console", name)
	_, ok = m.Lines.Lookup(15)
	assert.False(t, ok, "autoload keys are not dependencies")

	assert.Equal(t, []string{
		"monolog/monolog", "symfony/console", "guzzlehttp/guzzle", "phpunit/phpunit", "symfony/var-dumper",
	}, m.Names(), "platform requirements are not fetched")
}

func TestComposerJSON_LineRecovery(t *testing.T) {
	content := strings.Join([]string{
		`{`,
		`  "name": "vendor/app",`,
		`  "require": {`,
		`    "other/pkg": "^1.0",`,
		`    "vendor/pkg": "^2.0"`,
		`  }`,
		`}`,
	}, "\n")

	m, err := (&ComposerJSON{}).Parse("/app/composer.json", []byte(content))
	require.NoError(t, err)

	// The require block opens on 1-based line 3 and vendor/pkg sits two
	// lines further down: 1-based line 5, 0-based line 4.
	d, ok := m.Dependency("vendor/pkg")
	require.True(t, ok)
	assert.Equal(t, 4, d.Line)
	assert.Equal(t, 4, d.Column)
	assert.Equal(t, 16, d.EndColumn)
	assert.Equal(t, "^2.0", d.Constraint)

	name, _ := m.Lines.Lookup(4)
	assert.Equal(t, "vendor/pkg", name)
}

func TestComposerJSON_ParseIsIdempotent(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "composer.json"))
	require.NoError(t, err)

	parser := &ComposerJSON{}
	first, err := parser.Parse("composer.json", content)
	require.NoError(t, err)
	second, err := parser.Parse("composer.json", content)
	require.NoError(t, err)

	assert.Equal(t, first.Dependencies, second.Dependencies)
	assert.Equal(t, first.Lines.Lines(), second.Lines.Lines())
	for _, line := range first.Lines.Lines() {
		a, _ := first.Lines.Lookup(line)
		b, _ := second.Lines.Lookup(line)
		assert.Equal(t, a, b)
	}
}

func TestComposerJSON_NestedValuesDoNotEndBlock(t *testing.T) {
	content := `{
  "require": {
    "first/pkg": "^1.0",
    "weird/pkg": {"version": "^1.0", "tags": ["a", {"b": "}"}]},
    "last/pkg": "^3.0"
  },
  "extra": {"require": {"not/a-dep": "^1.0"}}
}`

	var logged []string
	parser := &ComposerJSON{logger: func(format string, args ...any) {
		logged = append(logged, format)
	}}
	m, err := parser.Parse("composer.json", []byte(content))
	require.NoError(t, err)

	names := make([]string, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"first/pkg", "last/pkg"}, names)

	last, _ := m.Dependency("last/pkg")
	assert.Equal(t, 4, last.Line)
	assert.Len(t, logged, 1, "non-string constraint is logged")
}

func TestComposerJSON_Minified(t *testing.T) {
	content := `{"require":{"a/a":"^1.0","b/b":"^2.0"},"require-dev":{"c/c":"*"}}`

	m, err := (&ComposerJSON{}).Parse("composer.json", []byte(content))
	require.NoError(t, err)
	require.Len(t, m.Dependencies, 3)

	for _, d := range m.Dependencies {
		assert.Equal(t, 0, d.Line, d.Name)
		assert.Equal(t, `"`+d.Name+`"`, content[d.Column:d.EndColumn])
	}
	// Every entry shares line 0; the first require entry keeps it.
	name, _ := m.Lines.Lookup(0)
	assert.Equal(t, "a/a", name)
}

func TestComposerJSON_SharedLineCollision(t *testing.T) {
	content := "{\n" +
		`  "require": {"psr/log": "^3.0"}, "require-dev": {"psr/log": "^2.0", "phpunit/phpunit": "^10.0"}` + "\n" +
		"}"

	m, err := (&ComposerJSON{}).Parse("composer.json", []byte(content))
	require.NoError(t, err)
	require.Len(t, m.Dependencies, 3)

	name, ok := m.Lines.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "psr/log", name)

	d, _ := m.Dependency("psr/log")
	assert.Equal(t, deps.BlockRequire, d.Block, "require wins over require-dev")
	assert.Equal(t, "^3.0", d.Constraint)
}

func TestComposerJSON_DuplicateKeyLastWins(t *testing.T) {
	content := `{
  "require": {
    "psr/log": "^1.0",
    "psr/log": "^3.0"
  }
}`
	m, err := (&ComposerJSON{}).Parse("composer.json", []byte(content))
	require.NoError(t, err)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, "^3.0", m.Dependencies[0].Constraint)
	assert.Equal(t, 3, m.Dependencies[0].Line)
}

func TestComposerJSON_MissingBlocks(t *testing.T) {
	m, err := (&ComposerJSON{}).Parse("composer.json", []byte(`{"name": "acme/empty"}`))
	require.NoError(t, err)
	assert.Empty(t, m.Dependencies)
	assert.Equal(t, 0, m.Lines.Len())
}

func TestComposerJSON_NonObjectBlocks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty dev array", `{"require":{"vendor/a":"^1.0"},"require-dev":[]}`, []string{"vendor/a"}},
		{"null require", `{"require":null,"require-dev":{"vendor/b":"^2.0"}}`, []string{"vendor/b"}},
		{"both arrays", `{"require":[],"require-dev":[]}`, nil},
		{"string block", `{"require":"vendor/a","require-dev":{"vendor/b":"^2.0"}}`, []string{"vendor/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logged []string
			parser := &ComposerJSON{logger: func(format string, args ...any) {
				logged = append(logged, format)
			}}
			m, err := parser.Parse("composer.json", []byte(tt.content))
			require.NoError(t, err)

			var names []string
			for _, d := range m.Dependencies {
				names = append(names, d.Name)
			}
			assert.Equal(t, tt.want, names)
			if tt.name != "null require" {
				assert.NotEmpty(t, logged, "non-object block is logged")
			}
		})
	}
}

func TestComposerJSON_Errors(t *testing.T) {
	parser := &ComposerJSON{}

	_, err := parser.Parse("/app/package.json", []byte(`{}`))
	assert.True(t, errors.Is(err, errors.ErrCodeNotManifest), "got %v", err)

	_, err = parser.Parse("/app/composer.json", []byte(`{"require": {`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "got %v", err)

	_, err = parser.Parse(filepath.Join(t.TempDir(), "composer.json"), nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "got %v", err)
}

func TestComposerJSON_UTF16Columns(t *testing.T) {
	content := `{"description": "café", "require": {"a/a": "^1.0"}}`
	m, err := (&ComposerJSON{}).Parse("composer.json", []byte(content))
	require.NoError(t, err)
	require.Len(t, m.Dependencies, 1)

	byteCol := strings.Index(content, `"a/a"`)
	assert.Equal(t, byteCol-1, m.Dependencies[0].Column, "é is two bytes but one UTF-16 unit")
}

func TestIsPlatformPackage(t *testing.T) {
	tests := map[string]bool{
		"php":                  true,
		"php-64bit":            true,
		"ext-json":             true,
		"ext-pdo_mysql":        true,
		"lib-icu":              true,
		"composer-plugin-api":  true,
		"composer-runtime-api": true,
		"composer":             true,
		"hhvm":                 true,
		"symfony/console":      false,
		"php-http/client":      false,
		"composer/semver":      false,
	}
	got := make(map[string]bool, len(tests))
	for name := range tests {
		got[name] = IsPlatformPackage(name)
	}
	if !reflect.DeepEqual(got, tests) {
		t.Errorf("IsPlatformPackage() = %v, want %v", got, tests)
	}
}
