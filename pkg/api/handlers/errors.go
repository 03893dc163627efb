// Package handlers implements the HTTP endpoints of the question service.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"originate-hq/meridian/pkg/queue"
	"originate-hq/meridian/pkg/record"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

// writeServiceError maps service-layer errors onto HTTP statuses per the
// error policy: not-found and argument errors surface; everything else is
// internal. Only recoverable failures were already absorbed upstream.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var invalid *queue.InvalidAnswerError
	switch {
	case errors.Is(err, record.ErrProposalNotFound):
		writeError(w, http.StatusNotFound, "not_found", "proposal not found")
	case errors.Is(err, queue.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, "not_found", "unknown question")
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, "invalid_argument", invalid.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "an internal error occurred")
	}
}
