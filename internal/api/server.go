// Package api provides the local REST server backing the TWL editing UI.
package api

import (
	"fmt"
	"net/http"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/cache"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/logging"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/markers"
)

// Config holds API server settings.
type Config struct {
	// Port to listen on.
	Port int

	// MarkersPath is the SQLite file for the marker store. ":memory:"
	// keeps markers for the lifetime of the process only.
	MarkersPath string
}

// Server wires the pipeline, marker store, verse-text cache, and
// progress hub behind HTTP handlers.
type Server struct {
	cfg    Config
	store  *markers.Store
	verses *cache.VerseTextCache
	hub    *Hub
}

// NewServer creates a server and opens its marker store.
func NewServer(cfg Config) (*Server, error) {
	if cfg.MarkersPath == "" {
		cfg.MarkersPath = ":memory:"
	}
	store, err := markers.Open(cfg.MarkersPath)
	if err != nil {
		return nil, fmt.Errorf("opening marker store: %w", err)
	}
	return &Server{
		cfg:    cfg,
		store:  store,
		verses: cache.NewDefaultVerseTextCache(),
		hub:    NewHub(),
	}, nil
}

// Close releases the server's resources.
func (s *Server) Close() error {
	return s.store.Close()
}

// Handler returns the server's routed handler with logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/merge", s.handleMerge)
	mux.HandleFunc("POST /api/v1/validate", s.handleValidate)
	mux.HandleFunc("GET /api/v1/markers", s.handleListMarkers)
	mux.HandleFunc("PUT /api/v1/markers", s.handlePutMarker)
	mux.HandleFunc("DELETE /api/v1/markers", s.handleRemoveMarker)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return logging.CombinedMiddleware(mux)
}

// Start runs the server until its listener fails.
func (s *Server) Start() error {
	go s.hub.Run()
	logging.ServerStartup("twl_api", "http", s.cfg.Port,
		"markers_path", s.cfg.MarkersPath,
		"sqlite_driver", markers.DriverType())
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return http.ListenAndServe(addr, s.Handler())
}
