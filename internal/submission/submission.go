// Package submission assembles finished feedback runs into durable records
// and derives tabular and aggregate views from them.
package submission

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/roomvoice/roomvoice/internal/feedback"
	"github.com/roomvoice/roomvoice/internal/room"
)

// Record is one completed run: who answered, when, and what they said per
// selected event.
type Record struct {
	RoomID      string                                `json:"roomId"`
	SubmittedAt time.Time                             `json:"submittedAt"`
	User        feedback.Participant                  `json:"user"`
	Feedbacks   map[string]map[string]feedback.Answer `json:"feedbacks"`
}

// Stored is a record as persisted, carrying its storage identifier.
type Stored struct {
	ID string `json:"id"`
	Record
}

const missingValue = "N/A"

// RowHeader names the columns of the flattened tabular view.
func RowHeader() []string {
	return []string{"Submitted At", "Name", "Department", "Email", "Phone", "Event", "Feedback", "Room", "Raw"}
}

// FlattenRows renders one stored record as tabular rows, one row per event
// answered. Question labels come from the room configuration when the
// question still exists, otherwise the question id is used. Disabled or
// empty contact fields render as N/A.
func FlattenRows(cfg room.Config, stored Stored) [][]string {
	raw, err := json.Marshal(stored.Record)
	if err != nil {
		raw = []byte("{}")
	}

	eventIDs := make([]string, 0, len(stored.Feedbacks))
	for eventID := range stored.Feedbacks {
		eventIDs = append(eventIDs, eventID)
	}
	sort.Strings(eventIDs)

	rows := make([][]string, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		rows = append(rows, []string{
			stored.SubmittedAt.UTC().Format(time.RFC3339),
			orMissing(stored.User.Name),
			orMissing(stored.User.Department),
			orMissing(stored.User.Email),
			orMissing(stored.User.Phone),
			eventID,
			summarize(cfg, eventID, stored.Feedbacks[eventID]),
			stored.RoomID,
			string(raw),
		})
	}
	return rows
}

func orMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return missingValue
	}
	return value
}

// summarize renders one event's answers as "Label: value | Label: value",
// following the room's question order for stable output.
func summarize(cfg room.Config, eventID string, answers map[string]feedback.Answer) string {
	event, found := cfg.FindEvent(eventID)

	parts := make([]string, 0, len(answers))
	emitted := make(map[string]bool, len(answers))
	if found {
		for _, q := range event.Questions {
			answer, ok := answers[q.ID]
			if !ok || answer.IsZero() {
				continue
			}
			parts = append(parts, q.Label+": "+answer.Display())
			emitted[q.ID] = true
		}
	}

	// Answers for questions deleted after submission keep their ids.
	leftover := make([]string, 0)
	for qID, answer := range answers {
		if emitted[qID] || answer.IsZero() {
			continue
		}
		leftover = append(leftover, qID+": "+answer.Display())
	}
	sort.Strings(leftover)
	parts = append(parts, leftover...)

	return strings.Join(parts, " | ")
}

// EventStats aggregates one event's submissions.
type EventStats struct {
	EventID       string  `json:"eventId"`
	Title         string  `json:"title"`
	Responses     int     `json:"responses"`
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
}

// Stats is the per-room aggregate view.
type Stats struct {
	RoomID           string       `json:"roomId"`
	TotalSubmissions int          `json:"totalSubmissions"`
	Events           []EventStats `json:"events"`
}

// Aggregate computes response counts and mean ratings per event. Every event
// in the configuration appears, including events with no responses. Only
// answers that parse as ratings in the 1..5 range feed the average.
func Aggregate(cfg room.Config, records []Stored) Stats {
	stats := Stats{RoomID: cfg.ID, TotalSubmissions: len(records)}

	totals := make(map[string]int)
	counts := make(map[string]int)
	responses := make(map[string]int)
	for _, rec := range records {
		for eventID, answers := range rec.Feedbacks {
			responses[eventID]++
			for _, answer := range answers {
				if value, ok := answer.NumericRating(); ok {
					totals[eventID] += value
					counts[eventID]++
				}
			}
		}
	}

	for _, event := range cfg.Events {
		es := EventStats{
			EventID:     event.ID,
			Title:       event.Title,
			Responses:   responses[event.ID],
			RatingCount: counts[event.ID],
		}
		if counts[event.ID] > 0 {
			es.AverageRating = float64(totals[event.ID]) / float64(counts[event.ID])
		}
		stats.Events = append(stats.Events, es)
	}
	return stats
}
