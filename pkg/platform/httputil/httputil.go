// Package httputil centralizes JSON response writing so every handler
// produces the same envelopes and domain errors translate to HTTP statuses
// in exactly one place.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "presadmin/pkg/domain-errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP error envelope.
// Internal and upstream errors omit the description so infrastructure
// details never reach clients; everything else carries its message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	description := ""

	var de dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		if code != dErrors.CodeInternal && code != dErrors.CodeUpstream {
			description = de.Message
		}
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), errorResponse{
		Error:            string(code),
		ErrorDescription: description,
	})
}
