package main

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mash-protocol/zeroconf-go/pkg/catalog"
	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Addr     string
	Version  string
	Gatherer prometheus.Gatherer
}

// Server exposes the service catalog over HTTP.
type Server struct {
	config  ServerConfig
	session *catalog.Session
	mux     *http.ServeMux
	server  *http.Server
}

// NewServer creates a server for session.
func NewServer(session *catalog.Session, cfg ServerConfig) *Server {
	s := &Server{
		config:  cfg,
		session: session,
		mux:     http.NewServeMux(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.mux,
	}
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/services", s.handleServices)
	s.mux.HandleFunc("/api/v1/services/", s.handleServiceByName)
	s.mux.HandleFunc("/api/v1/scan", s.handleScan)
	s.mux.HandleFunc("/api/v1/stop", s.handleStop)

	if s.config.Gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version := s.config.Version
	if version == "" {
		version = "dev"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  version,
		"session":  s.session.SessionID(),
		"services": s.session.Registry().Len(),
	})
}

// handleServices returns all services sorted by name.
func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services := s.session.GetServices()
	list := make([]discovery.ServiceDescriptor, 0, len(services))
	for _, svc := range services {
		list = append(list, svc)
	}
	slices.SortFunc(list, func(a, b discovery.ServiceDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})

	writeJSON(w, http.StatusOK, list)
}

// handleServiceByName returns one service.
func (s *Server) handleServiceByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/services/")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing service name"})
		return
	}

	svc, ok := s.session.Registry().Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "service not found: " + name})
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// scanRequest is the body of POST /api/v1/scan. All fields are optional.
type scanRequest struct {
	ServiceType string `json:"type"`
	Protocol    string `json:"protocol"`
	Domain      string `json:"domain"`
}

// handleScan starts a new scan. Failures arrive as error notifications.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req scanRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	query := catalog.Query{ServiceType: req.ServiceType, Protocol: req.Protocol, Domain: req.Domain}
	s.session.Scan(query)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"query":   query.String(),
		"session": s.session.SessionID(),
	})
}

// handleStop stops the current scan.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.session.Stop()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
