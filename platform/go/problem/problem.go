// Package problem writes RFC 7807 problem details responses.
package problem

import (
	"encoding/json"
	"net/http"
)

// ContentType is the media type of problem responses.
const ContentType = "application/problem+json"

// Problem type URIs.
const (
	TypeValidation   = "https://concoro.it/problems/validation-error"
	TypeNotFound     = "https://concoro.it/problems/not-found"
	TypeUnauthorized = "https://concoro.it/problems/unauthorized"
	TypeForbidden    = "https://concoro.it/problems/forbidden"
	TypeInternal     = "https://concoro.it/problems/internal-error"
)

// Details is the problem document. Errors carries per-field messages for validation failures.
type Details struct {
	Type     string              `json:"type,omitempty"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

// New builds a problem with the standard title for status when title is empty.
func New(status int, problemType, title, detail string) Details {
	if title == "" {
		title = http.StatusText(status)
	}
	return Details{Type: problemType, Title: title, Status: status, Detail: detail}
}

// Write sends p with its status code.
func Write(w http.ResponseWriter, p Details) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
