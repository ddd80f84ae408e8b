package httputil

import (
	"encoding/json"
	"net/http"
)

type ErrorBody struct {
	Error string `json:"error"`
}

type FieldErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// WriteFieldErrors reports a validation failure with per-field messages so the
// form layer can attach each message to its input.
func WriteFieldErrors(w http.ResponseWriter, fields map[string]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, FieldErrorBody{
		Error:  "validation failed",
		Fields: fields,
	})
}
