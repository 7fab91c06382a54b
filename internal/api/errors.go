package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/signalsfoundry/orbital-simulator/core"
)

// statusFromError maps engine errors onto HTTP status codes, the same job
// the gRPC status mapper does in services that speak protobuf.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, core.ErrBodyNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDegenerateOrbit),
		errors.Is(err, core.ErrSingularGeometry):
		// The request was well-formed; the simulation state just cannot
		// satisfy it right now.
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFromError(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
