package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/modulekit/internal/domain/catalog"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/config"
)

const testGroups = `
groups:
  layout:
    - type: static
      args:
        position: header
        priority: 5
        html: "<h1>Site</h1>"
    - type: fragment
      args:
        position: footer
        template: "<footer>{{ .year }}</footer>"
        year: 2024
  admin:
    - type: static
      args:
        position: header
        html: "<a id=\"admin\">admin</a>"
        permission: admin
`

const testIndex = `<html><body><header>@module(header)</header>@module('footer')</body></html>`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	groupsFile := filepath.Join(dir, "modules.yaml")
	require.NoError(t, os.WriteFile(groupsFile, []byte(testGroups), 0o644))

	views := filepath.Join(dir, "views")
	require.NoError(t, os.MkdirAll(views, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(views, "index.html"), []byte(testIndex), 0o644))

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Logging.Level = "error"
	cfg.Modules.GroupsFile = groupsFile
	cfg.Modules.BootGroups = []string{"layout", "admin"}
	cfg.Views.Dir = views
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewServerRegistersBootGroups(t *testing.T) {
	cfg := testConfig(t)
	cfg.Modules.PublicPermissions = []string{"admin"}
	srv := newTestServer(t, cfg)

	stats := srv.Registry().Stats()
	assert.Equal(t, 2, stats.Positions)
	assert.Equal(t, 3, stats.Modules)
	assert.Equal(t, []string{"fragment", "remote", "script", "static"}, srv.Catalog().List())

	w := get(srv, "/positions/header")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `<h1>Site</h1><a id="admin">admin</a>`, w.Body.String())

	w = get(srv, "/positions/footer")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<footer>2024</footer>", w.Body.String())
}

func TestNewServerHidesUngrantedModules(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := get(srv, "/positions/header")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>Site</h1>", w.Body.String())
}

func TestNewServerTokenGrants(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Modules.TokenHash = string(hash)
	cfg.Modules.TokenPermissions = []string{"admin"}
	srv := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/positions/header", nil)
	req.Header.Set("Authorization", "Bearer letmein")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="admin"`)

	assert.NotContains(t, get(srv, "/positions/header").Body.String(), `id="admin"`)
}

func TestNewServerRendersPages(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := get(srv, "/pages/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "Site", doc.Find("header h1").Text())
	assert.Equal(t, "2024", doc.Find("footer").Text())
	assert.Zero(t, doc.Find("#admin").Length())
}

func TestNewServerExposesMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	require.Equal(t, http.StatusOK, get(srv, "/positions/header").Code)

	w := get(srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "modulekit_registered_modules 3")
	assert.Contains(t, body, `modulekit_position_renders_total{position="header"} 1`)
	assert.Contains(t, body, "modulekit_http_requests_total")
}

func TestNewServerWatchesViews(t *testing.T) {
	cfg := testConfig(t)
	cfg.Views.WatchInterval = 5 * time.Millisecond
	srv := newTestServer(t, cfg)

	page := filepath.Join(cfg.Views.Dir, "news.html")
	require.NoError(t, os.WriteFile(page, []byte(`<main>@module(footer)</main>`), 0o644))

	assert.Eventually(t, func() bool {
		return get(srv, "/pages/news").Code == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "<main><footer>2024</footer></main>", get(srv, "/pages/news").Body.String())
}

func TestNewServerWithoutGroupsOrViews(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Views.Dir = filepath.Join(t.TempDir(), "missing")
	srv := newTestServer(t, cfg)

	assert.Zero(t, srv.Registry().Stats().Modules)
	assert.Equal(t, http.StatusNotFound, get(srv, "/pages/").Code)
	assert.Equal(t, http.StatusOK, get(srv, "/health").Code)
}

func TestNewServerErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(t *testing.T, cfg *config.Config)
		target error
	}{
		{
			name: "unknown boot group",
			modify: func(t *testing.T, cfg *config.Config) {
				cfg.Modules.BootGroups = []string{"layout", "nope"}
			},
			target: catalog.ErrUnknownGroup,
		},
		{
			name: "boot groups without file",
			modify: func(t *testing.T, cfg *config.Config) {
				cfg.Modules.GroupsFile = ""
			},
		},
		{
			name: "missing groups file",
			modify: func(t *testing.T, cfg *config.Config) {
				cfg.Modules.GroupsFile = filepath.Join(t.TempDir(), "none.yaml")
			},
			target: os.ErrNotExist,
		},
		{
			name: "unknown sanitize mode",
			modify: func(t *testing.T, cfg *config.Config) {
				cfg.Modules.Sanitize = "loose"
			},
		},
		{
			name: "invalid token hash",
			modify: func(t *testing.T, cfg *config.Config) {
				cfg.Modules.TokenHash = "plain"
			},
		},
		{
			name: "views path is a file",
			modify: func(t *testing.T, cfg *config.Config) {
				cfg.Views.Dir = cfg.Modules.GroupsFile
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(t, cfg)

			_, err := NewServer(cfg)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestRunAndShutdown(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", srv.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}
