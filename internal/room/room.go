// Package room models a feedback room: tenant-scoped metadata, participant
// field settings, and an ordered list of events with their questions.
//
// All mutation helpers are pure: they operate on a snapshot and return a new
// Config value, leaving persistence to the caller.
package room

import (
	"strings"
	"time"
)

// QuestionType enumerates the supported answer widgets.
type QuestionType string

const (
	QuestionRating   QuestionType = "rating"
	QuestionText     QuestionType = "text"
	QuestionChoice   QuestionType = "choice"
	QuestionReaction QuestionType = "reaction-slider"
)

// ValidQuestionType reports whether t names a known question type.
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionRating, QuestionText, QuestionChoice, QuestionReaction:
		return true
	}
	return false
}

// Question is a single feedback prompt within an event.
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Label    string       `json:"label"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty"` // choice type only
}

// Event is a schedulable session participants give feedback on. Question
// order is significant and changes only through explicit move operations.
type Event struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	IsActive  bool       `json:"isActive"`
	Questions []Question `json:"questions"`
}

// Metadata is the listing projection of a room.
type Metadata struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	EventCount int       `json:"eventCount"`
	OwnerID    string    `json:"ownerId,omitempty"`
}

// FieldConfig controls one participant detail field.
type FieldConfig struct {
	Enabled  bool   `json:"enabled"`
	Required bool   `json:"required"`
	Label    string `json:"label"`
}

// ParticipantFields holds the per-room participant detail settings.
type ParticipantFields struct {
	Name       FieldConfig `json:"name"`
	Department FieldConfig `json:"department"`
	Email      FieldConfig `json:"email"`
	Phone      FieldConfig `json:"phone"`
}

// GlobalSettings carries room-wide presentation copy.
type GlobalSettings struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"`
}

// Config is the full room configuration document. ID is immutable after
// creation; Metadata.ID and both owner fields must stay consistent with the
// top level.
type Config struct {
	ID                string            `json:"id"`
	Metadata          Metadata          `json:"metadata"`
	OwnerID           string            `json:"ownerId,omitempty"`
	GlobalSettings    GlobalSettings    `json:"globalSettings"`
	ParticipantFields ParticipantFields `json:"participantFields"`
	Events            []Event           `json:"events"`
}

// FindEvent returns the event with the given id.
func (c Config) FindEvent(eventID string) (Event, bool) {
	for _, event := range c.Events {
		if event.ID == eventID {
			return event, true
		}
	}
	return Event{}, false
}

// ActiveEvents returns the events currently open for feedback, in order.
func (c Config) ActiveEvents() []Event {
	var active []Event
	for _, event := range c.Events {
		if event.IsActive {
			active = append(active, event)
		}
	}
	return active
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	out := c
	out.Events = make([]Event, len(c.Events))
	for i, event := range c.Events {
		out.Events[i] = event
		out.Events[i].Questions = make([]Question, len(event.Questions))
		for j, q := range event.Questions {
			out.Events[i].Questions[j] = q
			if q.Options != nil {
				out.Events[i].Questions[j].Options = append([]string(nil), q.Options...)
			}
		}
	}
	return out
}

// Slugify lowercases a title and replaces runs of non-alphanumerics with a
// single hyphen, for readable event and room ids.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
