package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

const checkManifest = `{
    "require": {
        "php": ">=8.1",
        "vendor/alpha": "^2.0",
        "vendor/beta": "~1.0",
        "vendor/missing": "^1.0"
    }
}`

func newRegistry(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/p2/{vendor}/{name}.json", func(w http.ResponseWriter, req *http.Request) {
		switch chi.URLParam(req, "vendor") + "/" + chi.URLParam(req, "name") {
		case "vendor/alpha":
			w.Write([]byte(`{"packages":{"vendor/alpha":[{"name":"vendor/alpha","version":"v2.2.1"},{"version":"v2.0.0"}]}}`))
		case "vendor/beta":
			w.Write([]byte(`{"packages":{"vendor/beta":[{"name":"vendor/beta","version":"1.0.3"}]}}`))
		default:
			http.NotFound(w, req)
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func runCheck(t *testing.T, args ...string) (string, error) {
	t.Helper()
	srv := newRegistry(t)
	cfg := writeConfig(t, `api_url = "`+srv.URL+`/p2"`)

	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", cfg, "check"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "composer.json")
	if err := os.WriteFile(path, []byte(checkManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	lock := `{"packages": [{"name": "vendor/beta", "version": "1.0.3"}]}`
	if err := os.WriteFile(filepath.Join(dir, "composer.lock"), []byte(lock), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCheck(t, path)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}

	lines := strings.Split(out, "\n")
	find := func(name string) string {
		for _, l := range lines {
			if strings.Contains(l, name) {
				return l
			}
		}
		t.Fatalf("no row for %s in:\n%s", name, out)
		return ""
	}

	if row := find("vendor/alpha"); !strings.Contains(row, "2.2.1") {
		t.Errorf("alpha row should offer 2.2.1: %q", row)
	}
	if row := find("vendor/beta"); !strings.Contains(row, "up to date") || !strings.Contains(row, "1.0.3") {
		t.Errorf("beta row should show the installed version as current: %q", row)
	}
	if row := find("vendor/missing"); !strings.Contains(row, "not found") {
		t.Errorf("missing row: %q", row)
	}
	if strings.Contains(out, "php ") {
		t.Errorf("platform requirements are not reported:\n%s", out)
	}
	if !strings.Contains(out, "1 of 3 packages have updates") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestCheckCommandInvalidManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composer.json")
	if err := os.WriteFile(path, []byte(`{"require": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCheck(t, path); err == nil {
		t.Error("check should fail on an undecodable manifest")
	}
}

func TestCheckCommandNotManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCheck(t, path); err == nil {
		t.Error("check should reject files other than composer.json")
	}
}
