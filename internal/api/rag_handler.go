// File path: internal/api/rag_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sentinela-id/sentinela/internal/common"
	"github.com/sentinela-id/sentinela/internal/rag"
)

// maxDatasetBytes bounds a stored dataset payload.
const maxDatasetBytes = 16 << 20

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	scope, err := scopeFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: query decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("question required"))
		return
	}
	answer, err := s.service.Answer(r.Context(), scope, req.Question)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Query processed successfully",
		"data":    answer,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := s.service.Insights(r.Context(), scope)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Insights generated successfully",
		"data":    report,
	})
}

func (s *Server) handleStoreDataset(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	scope, err := sessionScope(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxDatasetBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read dataset body: %w", err))
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("dataset body required"))
		return
	}
	if err := s.datasets.Save(scope, raw); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	// Drop any stale index so the next query rebuilds from the new dataset.
	if err := s.service.PurgeScope(r.Context(), scope); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: dataset stored", "scope", scope, "bytes", len(raw))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Dataset stored successfully",
		"data":    map[string]string{"scraperId": scope},
	})
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	scope, err := sessionScope(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// Purge the scope's vectors before removing the source dataset so no
	// orphaned rows outlive it.
	if err := s.service.PurgeScope(r.Context(), scope); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.datasets.Delete(scope); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: dataset deleted", "scope", scope)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Dataset deleted successfully",
		"data":    map[string]string{"scraperId": scope},
	})
}

// scopeFromRequest resolves the scope for query and insights routes: the
// global scope unless a session id path parameter is present.
func scopeFromRequest(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "scraperId")
	if raw == "" {
		return rag.GlobalScope, nil
	}
	return validateSessionID(raw)
}

// sessionScope resolves the scope for dataset routes, which always address a
// session.
func sessionScope(r *http.Request) (string, error) {
	return validateSessionID(chi.URLParam(r, "scraperId"))
}

func validateSessionID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid scraper id %q", raw)
	}
	return id.String(), nil
}
