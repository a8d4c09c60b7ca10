package room

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/platform/id"
)

// MoveDirection names the two adjacent-swap directions for questions.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// New returns the default configuration for a freshly created room: no
// events, name and department required, email and phone optional.
func New(roomID, name, ownerID string) (Config, error) {
	roomID = strings.TrimSpace(roomID)
	name = strings.TrimSpace(name)
	ownerID = strings.TrimSpace(ownerID)
	if roomID == "" {
		return Config{}, apperrors.New(apperrors.CodeRoomIDEmpty, "room id is required")
	}
	if name == "" {
		return Config{}, apperrors.New(apperrors.CodeRoomNameEmpty, "room name is required")
	}
	if ownerID == "" {
		return Config{}, apperrors.New(apperrors.CodeRoomOwnerEmpty, "room owner is required")
	}

	return Config{
		ID:      roomID,
		OwnerID: ownerID,
		Metadata: Metadata{
			ID:        roomID,
			Name:      name,
			CreatedAt: time.Now().UTC(),
			OwnerID:   ownerID,
		},
		GlobalSettings: GlobalSettings{
			Title:       name,
			Description: "Welcome! Please select an event to provide feedback.",
		},
		ParticipantFields: ParticipantFields{
			Name:       FieldConfig{Enabled: true, Required: true, Label: "Full Name"},
			Department: FieldConfig{Enabled: true, Required: true, Label: "Department"},
			Email:      FieldConfig{Enabled: true, Required: false, Label: "Email"},
			Phone:      FieldConfig{Enabled: true, Required: false, Label: "Phone"},
		},
		Events: []Event{},
	}, nil
}

// NewRoomID derives a readable unique room id from its name.
func NewRoomID(name string) (string, error) {
	suffix, err := id.Suffix(4)
	if err != nil {
		return "", fmt.Errorf("generate room id: %w", err)
	}
	slug := Slugify(name)
	if slug == "" {
		slug = "room"
	}
	return slug + "-" + suffix, nil
}

// AddEvent appends a new active event seeded with the default question pair:
// a required overall rating and an optional free-text comment.
func (c Config) AddEvent(title string) (Config, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Config{}, apperrors.New(apperrors.CodeEventTitleEmpty, "event title is required")
	}

	suffix, err := id.Suffix(4)
	if err != nil {
		return Config{}, fmt.Errorf("generate event id: %w", err)
	}
	slug := Slugify(title)
	if slug == "" {
		slug = "event"
	}

	out := c.Clone()
	out.Events = append(out.Events, Event{
		ID:       slug + "-" + suffix,
		Title:    title,
		IsActive: true,
		Questions: []Question{
			{ID: "q1", Type: QuestionRating, Label: "Overall Rating", Required: true},
			{ID: "q2", Type: QuestionText, Label: "Comments", Required: false},
		},
	})
	return out.Normalize(), nil
}

// EventPatch carries optional event field updates. Nil fields are left
// untouched.
type EventPatch struct {
	Title    *string
	IsActive *bool
}

// UpdateEvent applies a patch to the event with the given id.
func (c Config) UpdateEvent(eventID string, patch EventPatch) (Config, error) {
	out := c.Clone()
	for i := range out.Events {
		if out.Events[i].ID != eventID {
			continue
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return Config{}, apperrors.New(apperrors.CodeEventTitleEmpty, "event title is required")
			}
			out.Events[i].Title = title
		}
		if patch.IsActive != nil {
			out.Events[i].IsActive = *patch.IsActive
		}
		return out, nil
	}
	return Config{}, apperrors.WithMetadata(apperrors.CodeEventNotFound, "event not found", map[string]string{"event_id": eventID})
}

// DeleteEvent removes the event with the given id. Other events keep their
// positions and question lists.
func (c Config) DeleteEvent(eventID string) (Config, error) {
	out := c.Clone()
	for i := range out.Events {
		if out.Events[i].ID == eventID {
			out.Events = append(out.Events[:i], out.Events[i+1:]...)
			return out.Normalize(), nil
		}
	}
	return Config{}, apperrors.WithMetadata(apperrors.CodeEventNotFound, "event not found", map[string]string{"event_id": eventID})
}

// AddQuestion appends a question to the event. Choice questions without
// options get a default pair so the editor always has something to rename.
func (c Config) AddQuestion(eventID string, q Question) (Config, error) {
	if strings.TrimSpace(q.Label) == "" {
		return Config{}, apperrors.New(apperrors.CodeQuestionLabelEmpty, "question label is required")
	}
	if !ValidQuestionType(q.Type) {
		return Config{}, apperrors.WithMetadata(apperrors.CodeQuestionBadType, "unknown question type", map[string]string{"type": string(q.Type)})
	}
	if q.Type == QuestionChoice && len(q.Options) == 0 {
		q.Options = []string{"Option 1", "Option 2"}
	}
	if q.Type != QuestionChoice {
		q.Options = nil
	}
	if strings.TrimSpace(q.ID) == "" {
		suffix, err := id.Suffix(8)
		if err != nil {
			return Config{}, fmt.Errorf("generate question id: %w", err)
		}
		q.ID = "q-" + suffix
	}

	out := c.Clone()
	for i := range out.Events {
		if out.Events[i].ID == eventID {
			out.Events[i].Questions = append(out.Events[i].Questions, q)
			return out, nil
		}
	}
	return Config{}, apperrors.WithMetadata(apperrors.CodeEventNotFound, "event not found", map[string]string{"event_id": eventID})
}

// DeleteQuestion removes a question from the event.
func (c Config) DeleteQuestion(eventID, questionID string) (Config, error) {
	out := c.Clone()
	for i := range out.Events {
		if out.Events[i].ID != eventID {
			continue
		}
		questions := out.Events[i].Questions
		for j := range questions {
			if questions[j].ID == questionID {
				out.Events[i].Questions = append(questions[:j], questions[j+1:]...)
				return out, nil
			}
		}
		return Config{}, apperrors.WithMetadata(apperrors.CodeQuestionNotFound, "question not found", map[string]string{"question_id": questionID})
	}
	return Config{}, apperrors.WithMetadata(apperrors.CodeEventNotFound, "event not found", map[string]string{"event_id": eventID})
}

// MoveQuestion swaps the question at index with its neighbor in the given
// direction. Moves past either end are no-ops returning the input unchanged.
func (c Config) MoveQuestion(eventID string, index int, direction MoveDirection) (Config, error) {
	out := c.Clone()
	for i := range out.Events {
		if out.Events[i].ID != eventID {
			continue
		}
		questions := out.Events[i].Questions
		if index < 0 || index >= len(questions) {
			return Config{}, apperrors.WithMetadata(apperrors.CodeQuestionNotFound, "question index out of range", map[string]string{"event_id": eventID})
		}
		target := index - 1
		if direction == MoveDown {
			target = index + 1
		}
		if target < 0 || target >= len(questions) {
			return out, nil
		}
		questions[index], questions[target] = questions[target], questions[index]
		return out, nil
	}
	return Config{}, apperrors.WithMetadata(apperrors.CodeEventNotFound, "event not found", map[string]string{"event_id": eventID})
}

// Normalize re-derives the metadata fields that mirror top-level state:
// metadata id, owner and event count.
func (c Config) Normalize() Config {
	out := c
	out.Metadata.ID = c.ID
	out.Metadata.OwnerID = c.OwnerID
	out.Metadata.EventCount = len(c.Events)
	if out.Metadata.Name == "" {
		out.Metadata.Name = c.GlobalSettings.Title
	}
	return out
}

// Validate checks the identity invariants a configuration must satisfy
// before it may be persisted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return apperrors.New(apperrors.CodeRoomIDEmpty, "room id is required")
	}
	if c.Metadata.ID != "" && c.Metadata.ID != c.ID {
		return apperrors.WithMetadata(apperrors.CodeRoomMetadataDrift, "metadata id does not match room id", map[string]string{
			"id":          c.ID,
			"metadata_id": c.Metadata.ID,
		})
	}
	if c.OwnerID != "" && c.Metadata.OwnerID != "" && c.Metadata.OwnerID != c.OwnerID {
		return apperrors.New(apperrors.CodeRoomMetadataDrift, "metadata owner does not match room owner")
	}
	for _, event := range c.Events {
		for _, q := range event.Questions {
			if !ValidQuestionType(q.Type) {
				return apperrors.WithMetadata(apperrors.CodeQuestionBadType, "unknown question type", map[string]string{
					"event_id": event.ID,
					"type":     string(q.Type),
				})
			}
		}
	}
	return nil
}
