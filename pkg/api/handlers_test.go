package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ssargent/covertree/pkg/covertree"
	"github.com/ssargent/covertree/pkg/point"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMetrics is shared by every test server: NewMetrics registers its
// collectors on the default Prometheus registry, which rejects a second
// registration of the same metric names.
var testMetrics = covertree.NewMetrics()

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tree := covertree.NewFromPoint(point.New([]float64{0, 0}), "origin", nil, covertree.DefaultOptions())
	for i, p := range [][]float64{{1, 0}, {0, 1}, {5, 5}, {10, 10}} {
		ok, err := tree.Insert(point.New(p), fmt.Sprintf("pt-%d", i), nil)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return NewServer(tree, testMetrics)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	rec := httptest.NewRecorder()

	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()

	s.handleStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 5, data["n"])
	assert.EqualValues(t, 2, data["dimension"])
}

func TestHandleLevels(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/levels", nil)
	rec := httptest.NewRecorder()

	s.handleLevels(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleInsertPoint(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid insert", func(t *testing.T) {
		body, _ := json.Marshal(InsertRequest{Point: []float64{3, 3}, UID: "new-point"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/points", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		s.handleInsertPoint(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		require.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.True(t, data["inserted"].(bool))
	})

	t.Run("missing uid", func(t *testing.T) {
		body, _ := json.Marshal(InsertRequest{Point: []float64{3, 3}})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/points", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		s.handleInsertPoint(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/points", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()

		s.handleInsertPoint(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		body, _ := json.Marshal(InsertRequest{Point: []float64{1, 2, 3}, UID: "bad-dim"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/points", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		s.handleInsertPoint(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleNearest(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(QueryRequest{Point: []float64{0.9, 0.1}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query/nearest", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleNearest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pt-0", data["uid"])
}

func TestHandleNearestEmptyTree(t *testing.T) {
	s := NewServer(covertree.NewEmpty(2, covertree.DefaultOptions()), testMetrics)
	body, _ := json.Marshal(QueryRequest{Point: []float64{0, 0}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query/nearest", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleNearest(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleKNN(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(QueryRequest{Point: []float64{0, 0}, K: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query/knn", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleKNN(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	results := resp.Data.([]interface{})
	assert.Len(t, results, 2)
}

func TestHandleKNNBeam(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(QueryRequest{Point: []float64{0, 0}, K: 2, BeamWidth: 4})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query/knn", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleKNN(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleRange(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(QueryRequest{Point: []float64{0, 0}, Radius: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query/range", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleRange(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	results := resp.Data.([]interface{})
	assert.GreaterOrEqual(t, len(results), 1)
}

func TestHandleFurthest(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(QueryRequest{Point: []float64{0, 0}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query/furthest", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleFurthest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pt-3", data["uid"])
}

func TestQueryHandlerMalformedJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query/nearest", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	s.handleNearest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
