package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"originate-hq/meridian/pkg/loan"
	"originate-hq/meridian/pkg/queue"
)

// stateBody is the debug snapshot of a proposal's working set.
type stateBody struct {
	ProposalPid string           `json:"proposalPid"`
	Version     int64            `json:"version"`
	LoadedAt    time.Time        `json:"loadedAt"`
	Cached      bool             `json:"cached"`
	Fields      loan.Fields      `json:"fields"`
	Entities    loan.Entities    `json:"entities"`
	Answered    []string         `json:"answered"`
}

// StateHandler serves the loan-state debug endpoint.
type StateHandler struct {
	service *queue.Service
	logger  *slog.Logger
}

// NewStateHandler creates the handler.
func NewStateHandler(service *queue.Service, logger *slog.Logger) *StateHandler {
	return &StateHandler{service: service, logger: logger}
}

// ServeHTTP handles GET /v1/proposals/{pid}/state.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pid := r.PathValue("pid")
	if pid == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "proposal pid is required")
		return
	}

	state, cached, err := h.service.GetLoanState(r.Context(), pid)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stateBody{
		ProposalPid: state.ProposalPid,
		Version:     state.Version,
		LoadedAt:    state.LoadedAt,
		Cached:      cached,
		Fields:      state.Fields,
		Entities:    state.Entities,
		Answered:    state.AnsweredList(),
	})
}
