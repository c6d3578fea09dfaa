package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/covertree/pkg/covertree"
)

// StartServer starts the HTTP diagnostics/query server with all routes
// configured. It blocks for the lifetime of the server.
func StartServer(tree *covertree.Tree, config ServerConfig) error {
	metrics := covertree.NewMetrics()
	tree.SetMetrics(metrics)
	metrics.SetNodesTotal(tree.Len())

	server := NewServer(tree, metrics)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
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

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting covertree diagnostics server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	return http.ListenAndServe(addr, r)
}
