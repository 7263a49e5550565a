package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "unifiedinbox/internal/errors"
)

// ErrorResponse is the body of every failed JSON request
type ErrorResponse struct {
	Error string `json:"error"`
}

// encodeFailureBody is sent when a response value cannot be encoded
const encodeFailureBody = `{"error":"failed to encode response"}` + "\n"

// WriteJSON encodes v with the given status code. v is encoded before the
// header is written so an encoding failure becomes a 500 instead of an empty
// body.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	body, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, encodeFailureBody)
		return err
	}

	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

// WriteError maps err to its HTTP status and writes {"error": message}
func WriteError(w http.ResponseWriter, err error) error {
	return WriteJSON(w, apperrors.HTTPStatusCode(err), ErrorResponse{Error: apperrors.PublicMessage(err)})
}
