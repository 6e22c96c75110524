// Package server exposes the document query API over HTTP. The handlers are
// thin: parsing, allow-list validation, and session bookkeeping live here,
// while chunking and answering live in internal/chunker and internal/rag.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/nageshgg/DOC-QUERY/internal/config"
	"github.com/nageshgg/DOC-QUERY/internal/models"
	"github.com/nageshgg/DOC-QUERY/internal/rag"
)

// Server holds the single active session: one bound answer engine and its
// conversation history. One request at a time; uploads replace the session
// atomically and asks serialize against the bound model.
type Server struct {
	cfg *config.Config

	mu      sync.Mutex
	engine  *rag.Engine
	history []models.ConversationEntry
}

// New creates a Server with no document bound.
func New(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Routes builds the API handler with CORS applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /models", s.handleModels)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /test", s.handleTest)
	return s.cors(mux)
}

// cors allows the configured frontend origin and answers preflight requests
// before they reach the method-specific mux patterns.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.Server.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// errorResponse mirrors the {"detail": ...} error shape of the API.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func decodeJSON(r *http.Request, dst any, maxBytes int64) error {
	body := io.LimitReader(r.Body, maxBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Reject trailing garbage after the JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}
