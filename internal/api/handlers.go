package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/enzoomoreira/bacen-data-analysis/internal/analysis"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"loaded": s.analyzer.Loaded(),
	})
}

// handleResolve maps ?q= to a canonical identity.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeBadRequest(w, "query parameter q is required")
		return
	}

	id, err := s.analyzer.Resolve(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// handleAccounts searches one source's account dictionary. The source set
// is validated here so a typo is a 400, not an engine error.
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	switch source {
	case "cosif", "cosif-individual", "cosif-prudencial", "ifdata":
	default:
		writeBadRequest(w, "unknown source "+source+" (valid: cosif, cosif-prudencial, ifdata)")
		return
	}

	accounts, err := s.analyzer.SearchAccounts(r.Context(), source, r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":   source,
		"accounts": accounts,
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req analysis.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	table, err := s.analyzer.Compare(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	var req analysis.SeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	points, err := s.analyzer.Series(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (s *Server) handleSeriesBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Requests []analysis.SeriesRequest `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if len(body.Requests) == 0 {
		writeBadRequest(w, "requests must not be empty")
		return
	}

	result, err := s.analyzer.SeriesBatch(r.Context(), body.Requests)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	counts, err := s.analyzer.Reload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("api: reference data reloaded",
		zap.Int("entities", counts.Entities),
		zap.String("request_id", RequestIDFrom(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "reloaded",
		"counts": counts,
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	s.analyzer.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cache":   s.analyzer.CacheStats(),
		"lookups": s.analyzer.Lookups(),
	})
}
