// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/sentinela-id/sentinela/internal/common"
	"github.com/sentinela-id/sentinela/internal/dataset"
	"github.com/sentinela-id/sentinela/internal/rag"
)

type Server struct {
	router   chi.Router
	service  *rag.Service
	datasets *dataset.Store
}

func NewServer(service *rag.Service, datasets *dataset.Store) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("rag service required")
	}
	if datasets == nil {
		return nil, fmt.Errorf("dataset store required")
	}
	srv := &Server{
		router:   chi.NewRouter(),
		service:  service,
		datasets: datasets,
	}
	srv.routes()
	common.Logger().Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ready":  s.service.Ready(),
		})
	})

	s.router.Route("/rag", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/query/{scraperId}", s.handleQuery)
		r.Get("/insights", s.handleInsights)
		r.Get("/insights/{scraperId}", s.handleInsights)
		r.Put("/datasets/{scraperId}", s.handleStoreDataset)
		r.Delete("/datasets/{scraperId}", s.handleDeleteDataset)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusForError maps chain failures onto HTTP statuses: not indexed yet is a
// conflict the client can resolve, bad data is unprocessable, provider
// outages are service-unavailable.
func statusForError(err error) int {
	switch {
	case errors.Is(err, rag.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, rag.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, rag.ErrDataLoad):
		return http.StatusUnprocessableEntity
	case errors.Is(err, rag.ErrEmbeddingUnavailable), errors.Is(err, rag.ErrGeneration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
