package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"originate-hq/meridian/pkg/catalog"
	"originate-hq/meridian/pkg/evaluator"
	"originate-hq/meridian/pkg/loan"
	"originate-hq/meridian/pkg/statecache"
)

// ErrUnknownQuestion is returned for an answer naming a question the
// catalog does not contain; the transport maps it to not-found.
var ErrUnknownQuestion = errors.New("unknown question")

// InvalidAnswerError reports an answer payload that cannot be mapped onto
// the question's form fields; the transport maps it to an argument error.
type InvalidAnswerError struct {
	QuestionID string
	Message    string
}

// Error implements the error interface.
func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Message)
}

// WriteRecord is the durable write-back enqueued for each answer. The queue
// consumer owns persistence into the system of record.
type WriteRecord struct {
	ID           string                `json:"id"`
	ProposalPid  string                `json:"proposalPid"`
	QuestionID   string                `json:"questionId"`
	EntityPid    string                `json:"entityPid,omitempty"`
	FieldUpdates map[string]loan.Value `json:"fieldUpdates"`
	Timestamp    time.Time             `json:"timestamp"`
	RawInput     string                `json:"rawInput,omitempty"`
	Confidence   *float64              `json:"confidence,omitempty"`
}

// Publisher enqueues write records durably; pkg/outbox implements it over
// JetStream.
type Publisher interface {
	PublishAnswer(ctx context.Context, rec *WriteRecord) error
}

// PublishMetrics counts enqueue outcomes so ops can detect loss risk.
type PublishMetrics interface {
	RecordOutboxPublish()
	RecordOutboxPublishFailure()
}

type nopPublishMetrics struct{}

func (nopPublishMetrics) RecordOutboxPublish()        {}
func (nopPublishMetrics) RecordOutboxPublishFailure() {}

// AnswerRequest is one submitted answer. Answer is an opaque JSON document:
// a bare value for single-field questions, an object keyed by form-field
// label for multi-field questions.
type AnswerRequest struct {
	ProposalPid string
	QuestionID  string
	EntityPid   string
	Answer      json.RawMessage
	RawInput    string
	Confidence  *float64
}

// Service is the request-path facade: queue reads and answer submissions.
type Service struct {
	registry  *catalog.Registry
	cache     *statecache.Cache
	evaluator *evaluator.Evaluator
	builder   *Builder
	publisher Publisher
	logger    *slog.Logger
	metrics   PublishMetrics
}

// NewService wires the pipeline.
func NewService(registry *catalog.Registry, cache *statecache.Cache, eval *evaluator.Evaluator, publisher Publisher, logger *slog.Logger, metrics PublishMetrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = nopPublishMetrics{}
	}
	return &Service{
		registry:  registry,
		cache:     cache,
		evaluator: eval,
		builder:   NewBuilder(registry),
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// GetQuestions returns the current queue for a proposal.
func (s *Service) GetQuestions(ctx context.Context, proposalPid string) (*Response, error) {
	state, err := s.cache.Get(ctx, proposalPid)
	if err != nil {
		return nil, err
	}
	items, partial := s.evaluator.Evaluate(ctx, state)
	return s.builder.Build(state, items, partial), nil
}

// GetLoanState returns the working set for debugging.
func (s *Service) GetLoanState(ctx context.Context, proposalPid string) (*loan.LoanState, bool, error) {
	cached, err := s.cache.IsCached(ctx, proposalPid)
	if err != nil {
		cached = false
	}
	state, err := s.cache.Get(ctx, proposalPid)
	if err != nil {
		return nil, false, err
	}
	return state, cached, nil
}

// SubmitAnswer maps the answer onto loan fields, updates the cached state,
// enqueues the durable write record, and returns the recomputed queue. A
// failed enqueue is logged and counted but never fails the response; the
// hot cache stays authoritative for the session.
func (s *Service) SubmitAnswer(ctx context.Context, req *AnswerRequest) (*Response, error) {
	question := s.registry.Question(req.QuestionID)
	if question == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, req.QuestionID)
	}

	updates, err := mapAnswer(question, req.Answer)
	if err != nil {
		return nil, err
	}

	delta := make(loan.Fields, len(updates))
	for accessField, value := range updates {
		delta[loan.LowerCamel(accessField)] = value
	}

	state, err := s.cache.Update(ctx, req.ProposalPid, delta, question.ID)
	if err != nil {
		return nil, err
	}

	rec := &WriteRecord{
		ID:           uuid.NewString(),
		ProposalPid:  req.ProposalPid,
		QuestionID:   question.ID,
		EntityPid:    req.EntityPid,
		FieldUpdates: updates,
		Timestamp:    time.Now().UTC(),
		RawInput:     req.RawInput,
		Confidence:   req.Confidence,
	}
	if err := s.publisher.PublishAnswer(ctx, rec); err == nil {
		s.metrics.RecordOutboxPublish()
	} else {
		s.metrics.RecordOutboxPublishFailure()
		s.logger.Error("answer write record enqueue failed",
			"proposal_pid", req.ProposalPid,
			"question_id", question.ID,
			"record_id", rec.ID,
			"error", err,
		)
	}

	items, partial := s.evaluator.Evaluate(ctx, state)
	return s.builder.Build(state, items, partial), nil
}

// mapAnswer distributes the answer document across the question's access
// fields. Single-field questions bind the whole value; multi-field
// questions expect an object keyed by form-field label, and unknown keys
// fail.
func mapAnswer(question *catalog.Question, answer json.RawMessage) (map[string]loan.Value, error) {
	if len(answer) == 0 {
		return nil, &InvalidAnswerError{QuestionID: question.ID, Message: "answer is required"}
	}

	if len(question.FormFields) == 1 {
		var raw any
		if err := json.Unmarshal(answer, &raw); err != nil {
			return nil, &InvalidAnswerError{QuestionID: question.ID, Message: "answer is not valid JSON"}
		}
		return map[string]loan.Value{
			question.FormFields[0].AccessField: loan.FromAny(raw),
		}, nil
	}

	var mapping map[string]any
	if err := json.Unmarshal(answer, &mapping); err != nil {
		return nil, &InvalidAnswerError{QuestionID: question.ID, Message: "multi-field answer must be an object keyed by form-field label"}
	}

	byLabel := make(map[string]catalog.FormField, len(question.FormFields))
	for _, ff := range question.FormFields {
		byLabel[ff.Label] = ff
	}

	updates := make(map[string]loan.Value, len(mapping))
	for label, raw := range mapping {
		ff, ok := byLabel[label]
		if !ok {
			return nil, &InvalidAnswerError{QuestionID: question.ID, Message: fmt.Sprintf("unknown form-field label %q", label)}
		}
		updates[ff.AccessField] = loan.FromAny(raw)
	}
	if len(updates) == 0 {
		return nil, &InvalidAnswerError{QuestionID: question.ID, Message: "answer mapped no form fields"}
	}
	return updates, nil
}
