// Package feedback implements the participant side of a room: typed answer
// values, participant detail validation, and the multi-step run sequencer.
package feedback

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnswerKind tags the value stored in an Answer.
type AnswerKind string

const (
	AnswerRating   AnswerKind = "rating"
	AnswerText     AnswerKind = "text"
	AnswerChoice   AnswerKind = "choice"
	AnswerReaction AnswerKind = "reaction"
)

// Answer is a tagged union over the values a question can collect: a 1-5
// star rating, free text, a chosen option, or a reaction slider position.
type Answer struct {
	Kind   AnswerKind
	Rating int    // rating and reaction kinds
	Text   string // text and choice kinds
}

// RatingAnswer builds a star-rating answer.
func RatingAnswer(value int) Answer {
	return Answer{Kind: AnswerRating, Rating: value}
}

// TextAnswer builds a free-text answer.
func TextAnswer(value string) Answer {
	return Answer{Kind: AnswerText, Text: value}
}

// ChoiceAnswer builds an enumerated-choice answer.
func ChoiceAnswer(value string) Answer {
	return Answer{Kind: AnswerChoice, Text: value}
}

// ReactionAnswer builds a reaction-slider answer.
func ReactionAnswer(value int) Answer {
	return Answer{Kind: AnswerReaction, Rating: value}
}

// IsZero reports whether the answer counts as unanswered for required-field
// gating: empty, zero or missing values never satisfy a required question.
func (a Answer) IsZero() bool {
	switch a.Kind {
	case AnswerRating, AnswerReaction:
		return a.Rating == 0
	case AnswerText, AnswerChoice:
		return strings.TrimSpace(a.Text) == ""
	default:
		return true
	}
}

// NumericRating returns the 1-5 value carried by rating-like answers.
func (a Answer) NumericRating() (int, bool) {
	if (a.Kind == AnswerRating || a.Kind == AnswerReaction) && a.Rating >= 1 && a.Rating <= 5 {
		return a.Rating, true
	}
	return 0, false
}

// Display renders the raw value the way submission summaries show it.
func (a Answer) Display() string {
	switch a.Kind {
	case AnswerRating, AnswerReaction:
		return fmt.Sprintf("%d", a.Rating)
	default:
		return a.Text
	}
}

// MarshalJSON encodes the answer as its raw wire value: numbers for rating
// kinds, strings otherwise. This keeps stored submissions readable and
// compatible with loosely typed clients.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerRating, AnswerReaction:
		return json.Marshal(a.Rating)
	case AnswerText, AnswerChoice:
		return json.Marshal(a.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes loose wire values: JSON numbers become rating
// answers, strings become text answers. The sequencer retags choice and
// reaction values against the question type afterwards.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*a = Answer{}
		return nil
	}

	var number int
	if err := json.Unmarshal(data, &number); err == nil {
		*a = RatingAnswer(number)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = TextAnswer(text)
		return nil
	}

	return fmt.Errorf("answer must be a number or a string, got %s", trimmed)
}

// Retag aligns a loosely decoded answer with its question type, so numbers
// submitted for reaction sliders and strings submitted for choices carry the
// right kind.
func (a Answer) Retag(kind AnswerKind) Answer {
	out := a
	switch kind {
	case AnswerReaction:
		if a.Kind == AnswerRating {
			out.Kind = AnswerReaction
		}
	case AnswerChoice:
		if a.Kind == AnswerText {
			out.Kind = AnswerChoice
		}
	}
	return out
}
