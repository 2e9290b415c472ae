package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/songzhibin97/splscan/internal/models"
	"github.com/songzhibin97/splscan/internal/scanner"
	"github.com/songzhibin97/splscan/internal/utils/address"
)

const maxBodyBytes = 1 << 16

// ScanRequest is the body of POST /scanner
type ScanRequest struct {
	Contract string `json:"contract"`
}

// Server exposes the scanner over HTTP
type Server struct {
	analyzer scanner.Analyzer
	metrics  http.Handler
	origins  []string
	logger   *slog.Logger
}

// NewServer metrics may be nil, in which case /metrics is not mounted
func NewServer(analyzer scanner.Analyzer, metrics http.Handler, allowedOrigins []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		analyzer: analyzer,
		metrics:  metrics,
		origins:  allowedOrigins,
		logger:   logger,
	}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Post("/scanner", s.handleScan)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleScan 失败时同样返回 200, 错误放在 body 的 error 字段
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Warn("invalid scan request", "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, &models.AnalysisResult{Error: "invalid request body"})
		return
	}

	contract, err := address.Validate(req.Contract)
	if err != nil {
		s.logger.Warn("invalid contract address", "request_id", middleware.GetReqID(r.Context()), "contract", req.Contract)
		writeJSON(w, &models.AnalysisResult{Error: err.Error()})
		return
	}

	start := time.Now()
	result := s.analyzer.Analyze(r.Context(), contract)
	s.logger.Info("scan finished",
		"request_id", middleware.GetReqID(r.Context()),
		"contract", contract,
		"stage", result.Stage,
		"duration", time.Since(start),
	)
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
