package feedback

import (
	"context"
	"time"

	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/room"
)

// Step names one state of the run sequencer.
type Step string

const (
	StepDetails        Step = "details"
	StepEventSelection Step = "selection"
	StepFeedback       Step = "feedback"
	StepSuccess        Step = "success"
)

// Submitter persists one completed run. The sequencer calls it exactly once,
// when the participant finishes the last selected event.
type Submitter interface {
	Submit(ctx context.Context, roomID string, user Participant, feedbacks map[string]map[string]Answer) error
}

// Run drives a single participant through the wizard:
//
//	Details → EventSelection → Feedback(0) … Feedback(k-1) → Success
//
// Forward transitions are gated on validation; backward transitions are
// always allowed and preserve entered data. Success is terminal — a new Run
// is the only way to start over.
type Run struct {
	config        room.Config
	submitter     Submitter
	step          Step
	feedbackIndex int
	participant   Participant
	selected      []room.Event
	answers       map[string]map[string]Answer
	startedAt     time.Time
}

// NewRun starts a fresh run over the room configuration.
func NewRun(cfg room.Config, submitter Submitter) *Run {
	return &Run{
		config:    cfg,
		submitter: submitter,
		step:      StepDetails,
		answers:   make(map[string]map[string]Answer),
		startedAt: time.Now().UTC(),
	}
}

// Step returns the current sequencer state.
func (r *Run) Step() Step {
	return r.step
}

// StartedAt returns when the run began.
func (r *Run) StartedAt() time.Time {
	return r.startedAt
}

// FeedbackIndex returns the position within the selected events while in the
// feedback step.
func (r *Run) FeedbackIndex() int {
	return r.feedbackIndex
}

// CurrentEvent returns the event being answered while in the feedback step.
func (r *Run) CurrentEvent() (room.Event, bool) {
	if r.step != StepFeedback || r.feedbackIndex >= len(r.selected) {
		return room.Event{}, false
	}
	return r.selected[r.feedbackIndex], true
}

// Participant returns the details captured in the first step.
func (r *Run) Participant() Participant {
	return r.participant
}

// SelectedEvents returns the fixed selection order for this run.
func (r *Run) SelectedEvents() []room.Event {
	out := make([]room.Event, len(r.selected))
	copy(out, r.selected)
	return out
}

// Answers returns a copy of the stored answers for an event, for revisits.
func (r *Run) Answers(eventID string) map[string]Answer {
	stored, ok := r.answers[eventID]
	if !ok {
		return nil
	}
	out := make(map[string]Answer, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	return out
}

// SubmitDetails validates participant details against the room's field
// configuration and advances to event selection.
func (r *Run) SubmitDetails(p Participant) error {
	if r.step == StepSuccess {
		return apperrors.New(apperrors.CodeRunFinished, "run is complete")
	}
	if r.step != StepDetails {
		return apperrors.New(apperrors.CodeStepOrderViolation, "details were already submitted")
	}
	if err := ValidateParticipant(p, r.config.ParticipantFields); err != nil {
		return err
	}
	r.participant = p.Trimmed()
	r.step = StepEventSelection
	return nil
}

// SelectEvents fixes the event list for the remainder of the run and
// advances to the first feedback step. Selecting zero events is rejected and
// the step does not advance. Answers for events dropped from a re-selection
// are discarded; answers for still-selected events are preserved.
func (r *Run) SelectEvents(eventIDs []string) error {
	if r.step == StepSuccess {
		return apperrors.New(apperrors.CodeRunFinished, "run is complete")
	}
	if r.step != StepEventSelection {
		return apperrors.New(apperrors.CodeStepOrderViolation, "event selection is not the current step")
	}
	if len(eventIDs) == 0 {
		return apperrors.New(apperrors.CodeNoEventsSelected, "at least one event must be selected")
	}

	selected := make([]room.Event, 0, len(eventIDs))
	seen := make(map[string]bool, len(eventIDs))
	for _, eventID := range eventIDs {
		if seen[eventID] {
			continue
		}
		seen[eventID] = true
		event, ok := r.config.FindEvent(eventID)
		if !ok || !event.IsActive {
			return apperrors.WithMetadata(apperrors.CodeEventNotFound, "selected event is unknown or inactive", map[string]string{
				"event_id": eventID,
			})
		}
		selected = append(selected, event)
	}

	for eventID := range r.answers {
		if !seen[eventID] {
			delete(r.answers, eventID)
		}
	}

	r.selected = selected
	r.feedbackIndex = 0
	r.step = StepFeedback
	return nil
}

// SubmitAnswers records the answers for the current event and advances. Every
// required question must carry a non-zero answer. On the last event the run
// is handed to the submitter; submitter failure keeps the step unchanged so
// the participant can retry.
func (r *Run) SubmitAnswers(ctx context.Context, answers map[string]Answer) error {
	if r.step == StepSuccess {
		return apperrors.New(apperrors.CodeRunFinished, "run is complete")
	}
	if r.step != StepFeedback {
		return apperrors.New(apperrors.CodeStepOrderViolation, "feedback is not the current step")
	}

	event := r.selected[r.feedbackIndex]
	tagged, err := TagAnswers(event, answers)
	if err != nil {
		return err
	}
	r.answers[event.ID] = tagged

	if r.feedbackIndex < len(r.selected)-1 {
		r.feedbackIndex++
		return nil
	}

	if r.submitter != nil {
		if err := r.submitter.Submit(ctx, r.config.ID, r.participant, r.answersSnapshot()); err != nil {
			return err
		}
	}
	r.step = StepSuccess
	return nil
}

// Back steps to the previous screen, preserving all entered data. Going back
// from a finished run is rejected.
func (r *Run) Back() error {
	switch r.step {
	case StepEventSelection:
		r.step = StepDetails
		return nil
	case StepFeedback:
		if r.feedbackIndex > 0 {
			r.feedbackIndex--
			return nil
		}
		r.step = StepEventSelection
		return nil
	case StepSuccess:
		return apperrors.New(apperrors.CodeRunFinished, "run is complete")
	default:
		return apperrors.New(apperrors.CodeStepOrderViolation, "nothing before the details step")
	}
}

func (r *Run) answersSnapshot() map[string]map[string]Answer {
	out := make(map[string]map[string]Answer, len(r.selected))
	for _, event := range r.selected {
		stored := r.answers[event.ID]
		values := make(map[string]Answer, len(stored))
		for k, v := range stored {
			values[k] = v
		}
		out[event.ID] = values
	}
	return out
}

// TagAnswers validates one event's answers: required questions must have a
// non-zero value, and loosely decoded answers are retagged to match their
// question type. Answers for unknown questions are dropped.
func TagAnswers(event room.Event, answers map[string]Answer) (map[string]Answer, error) {
	tagged := make(map[string]Answer, len(answers))
	for _, q := range event.Questions {
		answer, ok := answers[q.ID]
		if ok {
			answer = answer.Retag(answerKindFor(q.Type))
		}
		if q.Required && (!ok || answer.IsZero()) {
			return nil, apperrors.WithMetadata(apperrors.CodeRequiredAnswerMissing, "required question is unanswered", map[string]string{
				"event_id":    event.ID,
				"question_id": q.ID,
			})
		}
		if ok && !answer.IsZero() {
			tagged[q.ID] = answer
		}
	}
	return tagged, nil
}

func answerKindFor(t room.QuestionType) AnswerKind {
	switch t {
	case room.QuestionRating:
		return AnswerRating
	case room.QuestionChoice:
		return AnswerChoice
	case room.QuestionReaction:
		return AnswerReaction
	default:
		return AnswerText
	}
}
