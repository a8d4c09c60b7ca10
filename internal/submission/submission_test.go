package submission

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/roomvoice/roomvoice/internal/feedback"
	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/room"
)

type fakePrimary struct {
	cfg       room.Config
	found     bool
	getErr    error
	appendErr error
	appended  []Record
}

func (f *fakePrimary) GetRoom(_ context.Context, _ string) (room.Config, bool, error) {
	return f.cfg, f.found, f.getErr
}

func (f *fakePrimary) AppendSubmission(_ context.Context, rec Record) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.appended = append(f.appended, rec)
	return "sub-1", nil
}

type fakeSecondary struct {
	rows [][]string
	err  error
}

func (f *fakeSecondary) AppendRows(_ context.Context, rows [][]string) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func talkRoom(t *testing.T) room.Config {
	t.Helper()
	cfg, err := room.New("demo", "Demo", "owner-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg, err = cfg.AddEvent("Talk A")
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	return cfg
}

func TestAssemblerSubmitWritesBothSinks(t *testing.T) {
	cfg := talkRoom(t)
	eventID := cfg.Events[0].ID
	primary := &fakePrimary{cfg: cfg, found: true}
	secondary := &fakeSecondary{}
	asm := NewAssembler(primary, secondary)

	err := asm.Submit(context.Background(), "demo", feedback.Participant{Name: "Jo", Department: "CS"}, map[string]map[string]feedback.Answer{
		eventID: {
			"q1": feedback.RatingAnswer(5),
			"q2": feedback.TextAnswer("Great"),
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(primary.appended) != 1 {
		t.Fatalf("primary appends = %d, want 1", len(primary.appended))
	}
	if len(secondary.rows) != 1 {
		t.Fatalf("secondary rows = %d, want 1", len(secondary.rows))
	}
	row := secondary.rows[0]
	if row[1] != "Jo" || row[2] != "CS" || row[3] != "N/A" || row[4] != "N/A" {
		t.Fatalf("row contact fields = %v", row[1:5])
	}
	if row[5] != eventID || row[7] != "demo" {
		t.Fatalf("row event/room = %q %q", row[5], row[7])
	}
	if !strings.Contains(row[6], "Overall Rating: 5") || !strings.Contains(row[6], "Comments: Great") {
		t.Fatalf("row summary = %q", row[6])
	}
}

func TestAssemblerPrimaryFailureSurfaces(t *testing.T) {
	cfg := talkRoom(t)
	primary := &fakePrimary{cfg: cfg, found: true, appendErr: errors.New("disk full")}
	secondary := &fakeSecondary{}
	asm := NewAssembler(primary, secondary)

	err := asm.Submit(context.Background(), "demo", feedback.Participant{Name: "Jo"}, map[string]map[string]feedback.Answer{
		cfg.Events[0].ID: {"q1": feedback.RatingAnswer(4)},
	})
	if apperrors.CodeOf(err) != apperrors.CodeStorageFailure {
		t.Fatalf("err = %v, want storage failure", err)
	}
	if len(secondary.rows) != 0 {
		t.Fatal("secondary written despite primary failure")
	}
}

func TestAssemblerSecondaryFailureIsBestEffort(t *testing.T) {
	cfg := talkRoom(t)
	primary := &fakePrimary{cfg: cfg, found: true}
	secondary := &fakeSecondary{err: errors.New("sheet offline")}
	asm := NewAssembler(primary, secondary)

	err := asm.Submit(context.Background(), "demo", feedback.Participant{Name: "Jo"}, map[string]map[string]feedback.Answer{
		cfg.Events[0].ID: {"q1": feedback.RatingAnswer(4)},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(primary.appended) != 1 {
		t.Fatalf("primary appends = %d, want 1", len(primary.appended))
	}
}

func TestAssemblerUnknownRoom(t *testing.T) {
	asm := NewAssembler(&fakePrimary{found: false}, nil)
	err := asm.Submit(context.Background(), "missing", feedback.Participant{}, nil)
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestFlattenRowsOnePerEvent(t *testing.T) {
	cfg := talkRoom(t)
	cfg, err := cfg.AddEvent("Talk B")
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	first, second := cfg.Events[0].ID, cfg.Events[1].ID

	stored := Stored{
		ID: "sub-1",
		Record: Record{
			RoomID:      "demo",
			SubmittedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			User:        feedback.Participant{Name: "Jo", Department: "CS", Email: "jo@example.com"},
			Feedbacks: map[string]map[string]feedback.Answer{
				first:  {"q1": feedback.RatingAnswer(5)},
				second: {"q2": feedback.TextAnswer("Loved it")},
			},
		},
	}
	rows := FlattenRows(cfg, stored)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "2026-03-14T09:30:00Z" {
		t.Fatalf("timestamp = %q", rows[0][0])
	}
	if rows[0][3] != "jo@example.com" || rows[0][4] != "N/A" {
		t.Fatalf("contact = %v", rows[0][3:5])
	}
	if len(rows[0]) != len(RowHeader()) {
		t.Fatalf("row width = %d, header width = %d", len(rows[0]), len(RowHeader()))
	}
}

func TestFlattenRowsDeletedQuestionFallsBackToID(t *testing.T) {
	cfg := talkRoom(t)
	eventID := cfg.Events[0].ID
	stored := Stored{
		ID: "sub-1",
		Record: Record{
			RoomID:      "demo",
			SubmittedAt: time.Now().UTC(),
			User:        feedback.Participant{Name: "Jo"},
			Feedbacks: map[string]map[string]feedback.Answer{
				eventID: {"q-gone": feedback.TextAnswer("orphan")},
			},
		},
	}
	rows := FlattenRows(cfg, stored)
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if !strings.Contains(rows[0][6], "q-gone: orphan") {
		t.Fatalf("summary = %q", rows[0][6])
	}
}

func TestAggregate(t *testing.T) {
	cfg := talkRoom(t)
	cfg, err := cfg.AddEvent("Talk B")
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	first, second := cfg.Events[0].ID, cfg.Events[1].ID

	records := []Stored{
		{ID: "s1", Record: Record{Feedbacks: map[string]map[string]feedback.Answer{
			first: {"q1": feedback.RatingAnswer(5), "q2": feedback.TextAnswer("text ignored")},
		}}},
		{ID: "s2", Record: Record{Feedbacks: map[string]map[string]feedback.Answer{
			first: {"q1": feedback.RatingAnswer(3)},
		}}},
	}

	stats := Aggregate(cfg, records)
	if stats.TotalSubmissions != 2 {
		t.Fatalf("total = %d", stats.TotalSubmissions)
	}
	if len(stats.Events) != 2 {
		t.Fatalf("events = %d", len(stats.Events))
	}
	var firstStats, secondStats EventStats
	for _, es := range stats.Events {
		switch es.EventID {
		case first:
			firstStats = es
		case second:
			secondStats = es
		}
	}
	if firstStats.Responses != 2 || firstStats.RatingCount != 2 || firstStats.AverageRating != 4 {
		t.Fatalf("first stats = %+v", firstStats)
	}
	if secondStats.Responses != 0 || secondStats.AverageRating != 0 {
		t.Fatalf("second stats = %+v", secondStats)
	}
}
