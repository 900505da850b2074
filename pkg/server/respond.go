package server

import (
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/render"
)

// envelope is the body of every JSON response.
type envelope struct {
	Error   bool           `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	// Issues carries schema validation failures keyed by field path.
	Issues map[string][]string `json:"issues,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, faults.StatusCode(err), envelope{
		Error:   true,
		Message: err.Error(),
		Issues:  issuePayload(err),
	})
}

func issuePayload(err error) map[string][]string {
	return render.IssuePayload(err)
}
