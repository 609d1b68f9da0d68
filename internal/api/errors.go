package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
)

// errorBody is the JSON error envelope. Beyond the machine-readable code
// and the human-readable message it carries whatever context the typed
// domain error holds, so callers can disambiguate or correct the request
// without a second round trip.
type errorBody struct {
	Error       string              `json:"error"`
	Message     string              `json:"message"`
	Identifier  string              `json:"identifier,omitempty"`
	Entity      string              `json:"entity,omitempty"`
	Scope       string              `json:"scope,omitempty"`
	Suggestions []string            `json:"suggestions,omitempty"`
	Matches     []model.EntityMatch `json:"matches,omitempty"`
	ValidScopes []model.Scope       `json:"valid_scopes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; encoding errors cannot change it.
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates domain errors to status codes: unresolved
// identifiers and missing data are 404, ambiguous names 409, invalid
// scopes 400. Anything else is an internal failure and its detail stays
// in the server log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound  *model.EntityNotFoundError
		ambiguous *model.AmbiguousIdentifierError
		badScope  *model.InvalidScopeError
		noData    *model.DataUnavailableError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:       "entity_not_found",
			Message:     err.Error(),
			Identifier:  notFound.Identifier,
			Suggestions: notFound.Suggestions,
		})
	case errors.As(err, &ambiguous):
		writeJSON(w, http.StatusConflict, errorBody{
			Error:      "ambiguous_identifier",
			Message:    err.Error(),
			Identifier: ambiguous.Identifier,
			Matches:    ambiguous.Matches,
		})
	case errors.As(err, &badScope):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:       "invalid_scope",
			Message:     err.Error(),
			Scope:       badScope.Scope,
			ValidScopes: badScope.Valid,
		})
	case errors.As(err, &noData):
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:   "data_unavailable",
			Message: err.Error(),
			Entity:  noData.Entity,
			Scope:   string(noData.Scope),
		})
	default:
		s.log.Error("api: request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "internal",
			Message: "internal error",
		})
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:   "bad_request",
		Message: message,
	})
}
