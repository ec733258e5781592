package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"flux/internal/core"
	"flux/internal/log"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// errMalformedBody marks a body that is not the JSON the route expects.
var errMalformedBody = errors.New("malformed request body")

// errorStatus maps the ledger error taxonomy to HTTP status codes. Anything
// that is neither a validation failure nor a missing record came from the
// remote repository.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case core.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	body := errorResponse{Error: err.Error()}

	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}

	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, r.Method+" "+r.URL.Path, nil)
		body.Error = "storage unavailable"
	}
	writeJSON(w, status, body)
}

func writeStatusError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
