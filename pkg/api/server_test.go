package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/covertree/pkg/covertree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter builds the same route table StartServer wires up, without
// actually binding a listener, so route dispatch can be exercised with
// httptest.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	server := newTestServer(t)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", server.handleHealth)
		r.Get("/stats", server.handleStats)
		r.Get("/levels", server.handleLevels)
		r.Post("/points", server.handleInsertPoint)
		r.Route("/query", func(r chi.Router) {
			r.Post("/nearest", server.handleNearest)
			r.Post("/knn", server.handleKNN)
			r.Post("/range", server.handleRange)
			r.Post("/furthest", server.handleFurthest)
		})
	})
	return r
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterMetricsExposed(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouterInsertThenQuery(t *testing.T) {
	router := newTestRouter(t)

	insertBody, _ := json.Marshal(InsertRequest{Point: []float64{2, 2}, UID: "router-insert"})
	insertReq := httptest.NewRequest(http.MethodPost, "/api/v1/points", bytes.NewReader(insertBody))
	insertRec := httptest.NewRecorder()
	router.ServeHTTP(insertRec, insertReq)
	require.Equal(t, http.StatusOK, insertRec.Code)

	queryBody, _ := json.Marshal(QueryRequest{Point: []float64{2, 2}})
	queryReq := httptest.NewRequest(http.MethodPost, "/api/v1/query/nearest", bytes.NewReader(queryBody))
	queryRec := httptest.NewRecorder()
	router.ServeHTTP(queryRec, queryReq)

	assert.Equal(t, http.StatusOK, queryRec.Code)
	var resp APIResponse
	require.NoError(t, json.NewDecoder(queryRec.Body).Decode(&resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "router-insert", data["uid"])
	assert.Equal(t, float64(0), data["distance"])
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
