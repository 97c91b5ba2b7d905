package php

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/composer-lsp/pkg/deps"
)

func TestLanguageRegistry(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/p2/{vendor}/{name}.json", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "vendor") != "psr" {
			http.NotFound(w, req)
			return
		}
		w.Write([]byte(`{"minified":"composer/2.0","packages":{"psr/log":[
			{"name":"psr/log","version":"3.0.0","description":"Common interface for logging libraries","homepage":"https://github.com/php-fig/log","authors":[{"name":" PHP-FIG "}]},
			{"version":"2.0.0"}
		]}}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	reg, err := Language.Registry("composer", deps.RegistryConfig{
		APIURL:     srv.URL + "/p2",
		WebURL:     "https://packagist.example",
		HTTPClient: srv.Client(),
		Attempts:   1,
	}, deps.Options{})
	require.NoError(t, err)
	assert.Equal(t, "packagist", reg.Name())

	pkgs := reg.FetchAll(context.Background(), []string{"psr/log", "acme/missing"})
	require.Len(t, pkgs, 1)

	pkg := pkgs["psr/log"]
	require.Len(t, pkg.Releases, 2)
	assert.Equal(t, "3.0.0", pkg.Releases[0].Version)
	assert.Equal(t, "PHP-FIG", pkg.Releases[0].Authors[0].Name)
	assert.Equal(t, "https://github.com/php-fig/log", pkg.Releases[1].Homepage, "minified fields are inherited")
	assert.Equal(t, "https://packagist.example/packages/psr/log", pkg.Releases[1].RegistryURL)

	v, ok := deps.LatestUpdate(pkg.Releases, "^2.0 || ^3.0", "2.0.0")
	assert.True(t, ok)
	assert.Equal(t, "3.0.0", v)
}

func TestLanguageManifestAndLock(t *testing.T) {
	p, err := Language.Manifest("/app/composer.json", deps.Options{})
	require.NoError(t, err)
	assert.Equal(t, "composer.json", p.Type())

	assert.Equal(t, "/app/composer.lock", Language.Lock(deps.Options{}).LockPath("/app/composer.json"))
}
