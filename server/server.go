package server

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"wahlkompass/internal/types"
	"wahlkompass/pkg/analyzer"
	"wahlkompass/pkg/store"
)

type Config struct {
	Addr      string
	RateLimit float64 // requests per second per client
	Burst     int
}

// Server is the thin web layer over the analysis core: one JSON endpoint
// per query, per-client rate limiting, and optional persistence of past
// analyses.
type Server struct {
	config   Config
	analyzer types.Analyzer
	history  *store.HistoryStore

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

type analyzeRequest struct {
	Statement string `json:"statement"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(config Config, a types.Analyzer, history *store.HistoryStore) (*Server, error) {
	if a == nil {
		return nil, errors.New("analyzer cannot be nil")
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 0.2
	}
	if config.Burst == 0 {
		config.Burst = 5
	}

	return &Server{
		config:   config,
		analyzer: a,
		history:  history,
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	log.Printf("listening on %s", s.config.Addr)
	return http.ListenAndServe(s.config.Addr, s.Handler())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	if !s.allow(clientKey(r)) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Statement == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no statement provided"})
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req.Statement)
	if err != nil {
		log.Printf("analysis failed: %v", err)
		var analysisErr *analyzer.AnalysisError
		if errors.As(err, &analysisErr) {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: analysisErr.Message})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "analysis failed"})
		return
	}

	if len(result) == 0 {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "analysis produced no result"})
		return
	}

	if s.history != nil {
		if err := s.history.Save(r.Context(), req.Statement, result); err != nil {
			// History is best effort; the analysis already succeeded.
			log.Printf("failed to save analysis: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history not available"})
		return
	}

	records, err := s.history.Recent(r.Context(), 20)
	if err != nil {
		log.Printf("failed to load history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load history"})
		return
	}
	if records == nil {
		records = []store.StatementRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

// allow checks the per-client token bucket.
func (s *Server) allow(key string) bool {
	s.mu.Lock()
	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.config.RateLimit), s.config.Burst)
		s.limiters[key] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
