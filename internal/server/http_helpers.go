package server

import (
	"encoding/json"
	"io"
	"net/http"

	"behavior-call/internal/game"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeGameError maps the coordinator's error taxonomy onto HTTP
// statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case game.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case game.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case game.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
