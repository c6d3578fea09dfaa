package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ssargent/covertree/pkg/covertree"
	"github.com/ssargent/covertree/pkg/point"
)

// Server holds the covertree instance and optional metrics hook every
// handler in this package closes over.
type Server struct {
	tree    *covertree.Tree
	metrics *covertree.Metrics
}

// NewServer creates a Server bound to tree, optionally instrumented with
// metrics (nil is fine; handlers simply skip recording then).
func NewServer(tree *covertree.Tree, metrics *covertree.Metrics) *Server {
	return &Server{tree: tree, metrics: metrics}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.tree.PrintStats(&buf)
	sendSuccess(w, map[string]interface{}{
		"n":         s.tree.Len(),
		"dimension": s.tree.Dim(),
		"base":      s.tree.Base(),
		"min_scale": s.tree.MinScale(),
		"max_scale": s.tree.MaxScale(),
		"summary":   buf.String(),
	})
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.tree.PrintLevels(&buf)
	sendSuccess(w, map[string]string{"levels": buf.String()})
}

func (s *Server) handleInsertPoint(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid JSON request", http.StatusBadRequest)
		return
	}
	if req.UID == "" {
		sendError(w, "uid is required", http.StatusBadRequest)
		return
	}

	p := point.New(req.Point)
	ok, err := s.tree.Insert(p, req.UID, req.ExtProp)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.metrics != nil {
		s.metrics.SetNodesTotal(s.tree.Len())
	}
	sendSuccess(w, map[string]bool{"inserted": ok})
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	s.timedQuery("nearest", w, r, func(req QueryRequest) (interface{}, error) {
		n, d, err := s.tree.NearestNeighbour(point.New(req.Point))
		if err != nil {
			return nil, err
		}
		return NeighbourResult{UID: n.UID(), Distance: d, Level: n.Level()}, nil
	})
}

func (s *Server) handleKNN(w http.ResponseWriter, r *http.Request) {
	s.timedQuery("knn", w, r, func(req QueryRequest) (interface{}, error) {
		k := req.K
		if k <= 0 {
			k = 10
		}
		var results []covertree.Neighbour
		var err error
		if req.BeamWidth > 0 {
			results, err = s.tree.KNearestNeighboursBeam(point.New(req.Point), k, req.BeamWidth)
		} else {
			results, err = s.tree.KNearestNeighbours(point.New(req.Point), k)
		}
		if err != nil {
			return nil, err
		}
		return neighbourResults(results), nil
	})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	s.timedQuery("range", w, r, func(req QueryRequest) (interface{}, error) {
		results, err := s.tree.RangeNeighbours(point.New(req.Point), req.Radius)
		if err != nil {
			return nil, err
		}
		return neighbourResults(results), nil
	})
}

func (s *Server) handleFurthest(w http.ResponseWriter, r *http.Request) {
	s.timedQuery("furthest", w, r, func(req QueryRequest) (interface{}, error) {
		n, d, err := s.tree.FurthestNeighbour(point.New(req.Point))
		if err != nil {
			return nil, err
		}
		return NeighbourResult{UID: n.UID(), Distance: d, Level: n.Level()}, nil
	})
}

func (s *Server) timedQuery(kind string, w http.ResponseWriter, r *http.Request, fn func(QueryRequest) (interface{}, error)) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid JSON request", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := fn(req)
	if s.metrics != nil {
		s.metrics.ObserveQuery(kind, time.Since(start))
	}
	if err != nil {
		if err == covertree.ErrEmptyTree {
			sendError(w, err.Error(), http.StatusNotFound)
			return
		}
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sendSuccess(w, result)
}

func neighbourResults(results []covertree.Neighbour) []NeighbourResult {
	out := make([]NeighbourResult, len(results))
	for i, n := range results {
		out[i] = NeighbourResult{UID: n.Node.UID(), Distance: n.Dist, Level: n.Node.Level()}
	}
	return out
}
