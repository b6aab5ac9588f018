// Package shared holds the helpers every HTTP handler uses to render
// responses. Errors go out as a {"field", "message"} envelope so clients can
// attach messages to form fields without parsing text.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "rngenius/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every error the API returns.
type ErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteError renders err as a JSON error envelope. Domain errors carry their
// own status code; anything else is masked as a 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := ErrorResponse{Field: "internal", Message: "Something went wrong"}
	if de, ok := dErrors.From(err); ok {
		status = dErrors.ToHTTPStatus(de.Code)
		body = ErrorResponse{Field: de.Field, Message: de.Message}
	}
	WriteJSON(w, status, body)
}

// WriteJSON renders v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
