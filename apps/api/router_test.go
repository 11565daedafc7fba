package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/concoro/concoro-platform/contracts"
	bandihandler "github.com/concoro/concoro-platform/domains/bandi/be/handler"
	"github.com/concoro/concoro-platform/domains/bandi/be/model"
	bandirepo "github.com/concoro/concoro-platform/domains/bandi/be/repo"
	bandiservice "github.com/concoro/concoro-platform/domains/bandi/be/service"
	sitemaphandler "github.com/concoro/concoro-platform/domains/sitemap/be/handler"
	sitemapservice "github.com/concoro/concoro-platform/domains/sitemap/be/service"
	"github.com/concoro/concoro-platform/platform/go/auth"
	"github.com/concoro/concoro-platform/platform/go/auth/devtoken"
	"github.com/concoro/concoro-platform/platform/go/metrics"
	"github.com/concoro/concoro-platform/platform/go/storage"
)

const vigasioSlug = "italia/verona/vigasio/istruttore-tecnico/2025-05-22/2d157e931ed9421aaac05a59f2ad9f7b"

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	m := metrics.New()
	repo := bandirepo.NewMemoryRepository(bandirepo.DefaultActiveStatus,
		model.FromDocument("2d157e931ed9421aaac05a59f2ad9f7b", map[string]any{
			"Ente":             "Comune di Vigasio",
			"AreaGeografica":   "Verona, Veneto",
			"Titolo":           "Concorso pubblico per la copertura di n. 1 posto di Istruttore Tecnico...",
			"publication_date": "2025-05-22",
			"Stato":            "open",
		}),
	)
	bandiSvc := bandiservice.New(repo, logger, m)

	outDir := t.TempDir()
	sitemapSvc := sitemapservice.New(bandiSvc, storage.NewLocalPublisher(outDir, ""), sitemapservice.Config{
		BaseURL: "https://www.concoro.it",
	}, logger, m)

	spec, err := contracts.Load(contracts.Bandi)
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(routerDeps{
		logger:         logger,
		metrics:        m,
		bandi:          bandihandler.New(bandiSvc, logger),
		sitemap:        sitemaphandler.New(sitemapSvc, logger),
		verify:         auth.UnsignedTokenVerifier(),
		spec:           spec,
		requestTimeout: 5 * time.Second,
		projectID:      "concoro-test",
	}))
	t.Cleanup(srv.Close)
	return srv, outDir
}

func devToken(t *testing.T, admin bool) string {
	t.Helper()
	token, err := devtoken.Build(devtoken.Params{
		ProjectID: "concoro-test",
		UserID:    "user-1",
		Email:     "user@concoro.it",
		Admin:     admin,
	}, time.Now())
	require.NoError(t, err)
	return token
}

func do(t *testing.T, method, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp := do(t, http.MethodGet, srv.URL+path, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestGetBandoBySlugThroughRouter(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/bandi/"+vigasioSlug, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body bandihandler.Bando
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "2d157e931ed9421aaac05a59f2ad9f7b", body.ID)
	require.Equal(t, vigasioSlug, body.Slug)
}

func TestGetBandoByIDThroughRouter(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/bandi/2d157e931ed9421aaac05a59f2ad9f7b", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/bandi/missing-bando", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
}

func TestResolveRequiresPathParameter(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/resolve", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
}

func TestPublishSitemapRequiresAdmin(t *testing.T) {
	srv, outDir := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/admin/sitemap", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/admin/sitemap", devToken(t, false))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/admin/sitemap", devToken(t, true))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	doc, err := os.ReadFile(filepath.Join(outDir, sitemapservice.ObjectKey))
	require.NoError(t, err)
	require.Contains(t, string(doc), "https://www.concoro.it/bandi/"+vigasioSlug)
}

func TestServeSitemapAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/sitemap-static.xml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, sitemapservice.ContentType, resp.Header.Get("Content-Type"))

	resp = do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOpenAPIDocs(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/openapi/"+contracts.Bandi+".json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/openapi/unknown.json", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/docs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBuildPublisherValidatesBackend(t *testing.T) {
	t.Parallel()

	_, err := buildPublisher(config{SitemapBackend: "gcs"}, nil)
	require.Error(t, err)

	_, err = buildPublisher(config{SitemapBackend: "s3"}, nil)
	require.Error(t, err)

	pub, err := buildPublisher(config{SitemapBackend: "local", SitemapLocalDir: t.TempDir()}, nil)
	require.NoError(t, err)
	require.NotNil(t, pub)
}
