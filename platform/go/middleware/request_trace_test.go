package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/concoro/concoro-platform/platform/go/auth"
	"github.com/concoro/concoro-platform/platform/go/requesttrace"
)

func bearer(payload string) string {
	return "Bearer eyJhbGciOiJub25lIn0." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + "."
}

func TestRequestTraceWithAuth(t *testing.T) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(auth.Authenticate(auth.UnsignedTokenVerifier()))
	r.Use(RequestTrace)

	r.Get("/test", func(w http.ResponseWriter, req *http.Request) {
		audit, ok := requesttrace.FromContext(req.Context())
		require.True(t, ok)
		require.Equal(t, requesttrace.ActorKindUser, audit.ActorKind)
		require.Equal(t, "user-123", audit.UserID)
		require.NotEmpty(t, audit.RequestID)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", bearer(`{"uid":"user-123"}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRequestTraceAnonymous(t *testing.T) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestTrace)

	r.Get("/test", func(w http.ResponseWriter, req *http.Request) {
		audit, ok := requesttrace.FromContext(req.Context())
		require.True(t, ok)
		require.Equal(t, requesttrace.ActorKindAnonymous, audit.ActorKind)
		require.Empty(t, audit.UserID)
		w.WriteHeader(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://www.concoro.it/"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/bandi/x", nil)
	req.Header.Set("Origin", "https://www.concoro.it")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Equal(t, "https://www.concoro.it", resp.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bandi/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))

	resp = httptest.NewRecorder()
	CORS(nil)(h).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

const testContract = `
openapi: 3.0.3
info: {title: test, version: "1"}
servers:
  - url: https://api.concoro.it
paths:
  /api/v1/items/{id}:
    get:
      parameters:
        - {name: id, in: path, required: true, schema: {type: string, minLength: 3}}
      responses:
        "200": {description: ok}
  /api/v1/admin/run:
    post:
      security:
        - bearerAuth: []
      responses:
        "202": {description: accepted}
components:
  securitySchemes:
    bearerAuth: {type: http, scheme: bearer}
`

func TestSpecValidator(t *testing.T) {
	spec, err := openapi3.NewLoader().LoadFromData([]byte(testContract))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(auth.Authenticate(auth.UnsignedTokenVerifier()))
	r.Use(SpecValidator(spec))
	r.Get("/api/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/api/v1/admin/run", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/items/abcd", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/items/ab", nil))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "application/problem+json", resp.Header().Get("Content-Type"))

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/admin/run", nil))
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/run", nil)
	req.Header.Set("Authorization", bearer(`{"uid":"ops-1"}`))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusAccepted, resp.Code)
}
