// Package chi exposes the diagnostics HTTP surface: health, metrics,
// and a single query endpoint. It is an operational shim, not an
// application API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain"
	healthuc "github.com/ghinote/ghinote/internal/usecase/health"
	"github.com/ghinote/ghinote/internal/usecase/retrieval"
)

// Asker answers one question against a user's notes.
type Asker interface {
	Ask(ctx context.Context, question, userID string, limit int) (*retrieval.Response, error)
}

// Server handles the diagnostics routes.
type Server struct {
	asker  Asker
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates the diagnostics server.
func NewServer(asker Asker, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{asker: asker, health: health, logger: logger}
}

// Routes registers the server's routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.getHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Post("/v1/query", s.postQuery)
}

type queryRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
	Limit    int    `json:"limit"`
}

type queryResult struct {
	NoteID string  `json:"note_id"`
	Score  float64 `json:"score"`
}

type queryResponse struct {
	QueryType string        `json:"query_type"`
	Results   []queryResult `json:"results"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) postQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "user_id is required")
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Question, req.UserID, req.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "validation_failed", domain.ErrEmptyQuestion.Error())
			return
		}
		s.logger.Error("query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	resp := queryResponse{
		QueryType: string(answer.QueryType),
		Results:   make([]queryResult, 0, len(answer.Results)),
	}
	for _, hit := range answer.Results {
		resp.Results = append(resp.Results, queryResult{NoteID: hit.Note.ID, Score: hit.Score})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}
	writeJSON(w, status, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
