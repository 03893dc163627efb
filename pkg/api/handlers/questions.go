package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"originate-hq/meridian/pkg/queue"
)

// QuestionsHandler serves the queue read path.
type QuestionsHandler struct {
	service *queue.Service
	logger  *slog.Logger
}

// NewQuestionsHandler creates the handler.
func NewQuestionsHandler(service *queue.Service, logger *slog.Logger) *QuestionsHandler {
	return &QuestionsHandler{service: service, logger: logger}
}

// ServeHTTP handles GET /v1/proposals/{pid}/questions.
func (h *QuestionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pid := r.PathValue("pid")
	if pid == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "proposal pid is required")
		return
	}

	resp, err := h.service.GetQuestions(r.Context(), pid)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// answerBody is the JSON request of the answer path.
type answerBody struct {
	QuestionID string          `json:"questionId"`
	EntityPid  string          `json:"entityPid,omitempty"`
	Answer     json.RawMessage `json:"answer"`
	RawInput   string          `json:"rawInput,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
}

// AnswersHandler serves the answer submission path.
type AnswersHandler struct {
	service *queue.Service
	logger  *slog.Logger
}

// NewAnswersHandler creates the handler.
func NewAnswersHandler(service *queue.Service, logger *slog.Logger) *AnswersHandler {
	return &AnswersHandler{service: service, logger: logger}
}

// ServeHTTP handles POST /v1/proposals/{pid}/answers.
func (h *AnswersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pid := r.PathValue("pid")
	if pid == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "proposal pid is required")
		return
	}

	var body answerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "request body is not valid JSON")
		return
	}
	if body.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", "questionId is required")
		return
	}
	if len(body.Answer) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "answer is required")
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), &queue.AnswerRequest{
		ProposalPid: pid,
		QuestionID:  body.QuestionID,
		EntityPid:   body.EntityPid,
		Answer:      body.Answer,
		RawInput:    body.RawInput,
		Confidence:  body.Confidence,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
