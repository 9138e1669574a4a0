// Package api exposes the assessment pipeline over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobquest/internal/assessment"
	"jobquest/internal/questionnaire"
	"jobquest/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Assessor runs and retrieves assessments, satisfied by assessment.Service.
type Assessor interface {
	Process(ctx context.Context, answers questionnaire.Answers) (assessment.Result, error)
	Get(ctx context.Context, id string) (assessment.Result, error)
}

// AppDeps holds dependencies for the HTTP handlers.
type AppDeps struct {
	Assessor Assessor
	Logger   *slog.Logger
}

// NewAppHandler creates the HTTP router. CORS is wide open because the
// questionnaire frontend is served from a different origin.
func NewAppHandler(deps AppDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(allowAllCORS)

	r.Get("/health", handleHealth)
	r.Get("/questionnaire", handleQuestionnaire)
	r.Post("/submit_questionnaire", handleSubmit(deps))
	r.Get("/results/{id}", handleResult(deps))

	return r
}

func allowAllCORS(next http.Handler) http.Handler {
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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"questions": questionnaire.Questions(),
	})
}

func handleSubmit(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var answers questionnaire.Answers
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		result, err := deps.Assessor.Process(r.Context(), answers)
		var incomplete *questionnaire.IncompleteError
		if errors.As(err, &incomplete) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", incomplete)
			return
		}
		if err != nil {
			deps.Logger.Error("assessment failed", "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to process assessment: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func handleResult(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := deps.Assessor.Get(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "assessment not found")
			return
		}
		if err != nil {
			deps.Logger.Error("loading assessment failed", "id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load assessment: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
