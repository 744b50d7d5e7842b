package api

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

type statusResponse struct {
	Status string `json:"status"`
}

// trustedHTML marks sanitizer output as safe for the page template.
func trustedHTML(s string) template.HTML {
	return template.HTML(s) //nolint:gosec // produced by sanitize.HTML
}
