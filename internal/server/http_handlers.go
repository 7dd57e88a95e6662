package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/globalroute/navigator/internal/planner"
)

func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /find_paths/{$}", s.handleFindPaths)
	mux.HandleFunc("POST /find_paths", s.handleFindPaths)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) handleFindPaths(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeHTTPError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	// Validate the raw document first so that type errors are reported
	// against field names rather than Go types.
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := s.schema.Validate(doc); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	req := s.planner.Defaults()
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp, err := s.planner.FindPaths(r.Context(), req)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidRequest) {
			s.writeHTTPError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Error processing request", "request_id", RequestID(r.Context()), "error", err)
		s.writeHTTPError(w, http.StatusInternalServerError, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	s.writeHTTPResponse(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, healthInfo{
		Status:  "healthy",
		Message: "GlobalRoute Navigator Backend API is running",
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	g := s.planner.Graph()
	s.writeHTTPResponse(w, http.StatusOK, rootInfo{
		Message: "Welcome to the GlobalRoute Navigator API",
		Endpoints: map[string]string{
			"POST /find_paths/": "Find optimal paths between locations",
			"GET /health":       "Check API health status",
			"GET /metrics":      "Prometheus metrics",
		},
		Network: networkInfo{Nodes: g.Len(), Edges: g.EdgeCount()},
	})
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
