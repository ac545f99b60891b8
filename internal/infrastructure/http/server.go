// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/campuskb/ragserve/internal/domain/entities"
	"github.com/campuskb/ragserve/internal/domain/usecases"
)

// Server is the HTTP server for the RAG API.
type Server struct {
	mu           sync.RWMutex
	retriever    *usecases.Retriever
	feedbackPath string
	addr         string
}

// NewServer creates a new HTTP server around a constructed retriever.
func NewServer(retriever *usecases.Retriever, feedbackPath, addr string) *Server {
	return &Server{
		retriever:    retriever,
		feedbackPath: feedbackPath,
		addr:         addr,
	}
}

// SwapRetriever replaces the retriever after a rebuild. In-flight queries
// finish against the one they started with.
func (s *Server) SwapRetriever(r *usecases.Retriever) {
	s.mu.Lock()
	s.retriever = r
	s.mu.Unlock()
	log.Printf("[INFO] retriever swapped after rebuild")
}

func (s *Server) currentRetriever() *usecases.Retriever {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retriever
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/feedback", s.handleFeedback)
	mux.HandleFunc("/api/health", s.handleHealth)
	return corsMiddleware(loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	log.Printf("[INFO] ragserve listening on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// queryRequest is the /query request body.
type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
	Model string `json:"model,omitempty"`
}

// queryResponse is the /query response body.
type queryResponse struct {
	Response      string            `json:"response"`
	RetrievedDocs []entities.Record `json:"retrieved_docs"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.currentRetriever().Answer(r.Context(), &entities.QueryRequest{
		Query: req.Query,
		K:     req.K,
		Model: req.Model,
	})
	if err != nil {
		if errors.Is(err, entities.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "query must not be empty")
			return
		}
		// The cause stays server-side; the client gets a generic failure.
		log.Printf("[ERROR] query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	docs := make([]entities.Record, len(resp.Retrieved))
	for i, d := range resp.Retrieved {
		docs[i] = d.Record
	}
	writeJSON(w, http.StatusOK, queryResponse{Response: resp.Answer, RetrievedDocs: docs})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var fb entities.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if fb.FeedbackType == "" {
		writeError(w, http.StatusBadRequest, "feedback_type is required")
		return
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now().UTC()
	}

	if err := appendFeedback(s.feedbackPath, &fb); err != nil {
		log.Printf("[ERROR] storing feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Feedback received"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ragserve is running"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// corsMiddleware allows cross-origin requests from any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request with its duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[INFO] %s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
