package php

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/matzehuels/composer-lsp/pkg/deps"
	"github.com/matzehuels/composer-lsp/pkg/errors"
)

// ComposerJSON parses composer.json files. It extracts require and
// require-dev entries together with the source position of each name.
type ComposerJSON struct {
	logger func(string, ...any)
}

func (c *ComposerJSON) Type() string              { return "composer.json" }
func (c *ComposerJSON) Supports(name string) bool { return strings.EqualFold(name, "composer.json") }

// Parse decodes the manifest at path. When content is nil the file is read
// from disk.
//
// Invalid JSON returns an ErrCodeInvalidManifest error and a path that is
// not a composer.json returns ErrCodeNotManifest. Missing, null or array
// require blocks yield an empty dependency list.
func (c *ComposerJSON) Parse(path string, content []byte) (*deps.Manifest, error) {
	if !c.Supports(filepath.Base(path)) {
		return nil, errors.New(errors.ErrCodeNotManifest, "not a composer.json: %s", path)
	}
	if content == nil {
		data, err := readFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
		}
		content = data
	}

	var comp composerFile
	if err := json.Unmarshal(content, &comp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode %s", path)
	}

	spans, err := scanKeys(content)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "scan %s", path)
	}

	lines := newLineTable(content)
	var list []deps.Dependency
	for _, block := range []deps.Block{deps.BlockRequire, deps.BlockRequireDev} {
		list = append(list, c.collect(block, c.block(comp, block), spans[block], lines)...)
	}

	return &deps.Manifest{
		Path:         path,
		Dependencies: list,
		Lines:        deps.NewLineIndex(list),
	}, nil
}

// collect pairs decoded entries with their scanned key spans, in document
// order. Entries without a usable string constraint or without a located
// key are dropped and logged.
func (c *ComposerJSON) collect(block deps.Block, values map[string]json.RawMessage, spans []keySpan, lines lineTable) []deps.Dependency {
	located := make(map[string]bool, len(spans))
	var out []deps.Dependency
	for _, s := range spans {
		raw, ok := values[s.name]
		if !ok {
			continue
		}
		located[s.name] = true

		var constraint string
		if err := json.Unmarshal(raw, &constraint); err != nil {
			c.log("skipping %s %q: constraint is not a string", block, s.name)
			continue
		}

		line, col := lines.position(s.start)
		_, end := lines.position(s.end)
		out = append(out, deps.Dependency{
			Name:       s.name,
			Constraint: constraint,
			Block:      block,
			Line:       line,
			Column:     col,
			EndColumn:  end,
			Platform:   IsPlatformPackage(s.name),
		})
	}

	for name := range values {
		if !located[name] {
			c.log("skipping %s %q: declaration line not found", block, name)
		}
	}
	return out
}

func (c *ComposerJSON) log(format string, args ...any) {
	if c.logger != nil {
		c.logger(format, args...)
	}
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

type composerFile struct {
	Require    json.RawMessage `json:"require"`
	RequireDev json.RawMessage `json:"require-dev"`
}

// block decodes one require block. Composer writes an empty block as [],
// so anything that is not an object counts as no dependencies.
func (c *ComposerJSON) block(f composerFile, b deps.Block) map[string]json.RawMessage {
	raw := f.Require
	if b == deps.BlockRequireDev {
		raw = f.RequireDev
	}
	if len(raw) == 0 {
		return nil
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		c.log("ignoring %s: not an object", b)
		return nil
	}
	return values
}

// keySpan is the byte range of a quoted member key, quotes included.
type keySpan struct {
	name       string
	start, end int64
}

// frame tracks one open object or array in the token stream.
type frame struct {
	object    bool
	expectKey bool
	block     deps.Block // set for the top-level require objects
}

// scanKeys walks the token stream and records the span of every member key
// of the top-level require and require-dev objects. Nested arrays and objects
// are tracked on an explicit stack, so they never end a block early. When a
// key repeats, the last occurrence wins, as in encoding/json.
func scanKeys(content []byte) (map[deps.Block][]keySpan, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	out := make(map[deps.Block][]keySpan)
	var stack []frame
	var pendingBlock deps.Block

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		var top *frame
		if n := len(stack); n > 0 {
			top = &stack[n-1]
		}

		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				if top != nil && top.object {
					top.expectKey = true
				}
				f := frame{object: d == '{', expectKey: d == '{'}
				if f.object {
					f.block = pendingBlock
				}
				stack = append(stack, f)
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
			pendingBlock = ""
			continue
		}

		if top == nil || !top.object {
			pendingBlock = ""
			continue
		}
		if !top.expectKey {
			top.expectKey = true
			pendingBlock = ""
			continue
		}

		top.expectKey = false
		name, _ := tok.(string)
		switch {
		case len(stack) == 1 && (name == string(deps.BlockRequire) || name == string(deps.BlockRequireDev)):
			pendingBlock = deps.Block(name)
		case top.block != "":
			span := keySpan{name: name, start: keyStart(content, before), end: dec.InputOffset()}
			out[top.block] = upsert(out[top.block], span)
		}
	}
}

// keyStart skips the separators the decoder has not consumed yet.
func keyStart(content []byte, off int64) int64 {
	for off < int64(len(content)) {
		switch content[off] {
		case ' ', '\t', '\r', '\n', ',':
			off++
		default:
			return off
		}
	}
	return off
}

func upsert(spans []keySpan, s keySpan) []keySpan {
	for i := range spans {
		if spans[i].name == s.name {
			spans = append(spans[:i], spans[i+1:]...)
			break
		}
	}
	return append(spans, s)
}

// lineTable converts byte offsets to 0-based line and UTF-16 column.
type lineTable struct {
	content []byte
	starts  []int64
}

func newLineTable(content []byte) lineTable {
	starts := []int64{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, int64(i+1))
		}
	}
	return lineTable{content: content, starts: starts}
}

func (t lineTable) position(off int64) (line, col int) {
	line = sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > off }) - 1
	return line, utf16Len(t.content[t.starts[line]:off])
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		n += len(utf16.Encode([]rune{r}))
		b = b[size:]
	}
	return n
}
