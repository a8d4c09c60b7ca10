package submission

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roomvoice/roomvoice/internal/feedback"
	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/platform/timeouts"
	"github.com/roomvoice/roomvoice/internal/room"
)

// Primary is the authoritative submission store. A failed append fails the
// whole submission.
type Primary interface {
	GetRoom(ctx context.Context, roomID string) (room.Config, bool, error)
	AppendSubmission(ctx context.Context, rec Record) (string, error)
}

// Secondary receives the flattened tabular view. Appends are best effort:
// failures are logged and never surface to the participant.
type Secondary interface {
	AppendRows(ctx context.Context, rows [][]string) error
}

// Assembler turns a finished run into a stored record, writing the primary
// store first and mirroring to the secondary sink afterwards.
type Assembler struct {
	primary   Primary
	secondary Secondary
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAssembler wires the two sinks. secondary may be nil.
func NewAssembler(primary Primary, secondary Secondary) *Assembler {
	return &Assembler{
		primary:   primary,
		secondary: secondary,
		tracer:    otel.Tracer("roomvoice/submission"),
		now:       time.Now,
	}
}

// Submit persists one completed run. It implements feedback.Submitter.
func (a *Assembler) Submit(ctx context.Context, roomID string, user feedback.Participant, feedbacks map[string]map[string]feedback.Answer) error {
	ctx, span := a.tracer.Start(ctx, "submission.Submit", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.Int("submission.events", len(feedbacks)),
	))
	defer span.End()

	cfg, found, err := a.primary.GetRoom(ctx, roomID)
	if err != nil {
		span.SetStatus(codes.Error, "room lookup failed")
		return apperrors.Wrap(apperrors.CodeStorageFailure, "load room for submission", err)
	}
	if !found {
		return apperrors.WithMetadata(apperrors.CodeNotFound, "room not found", map[string]string{"room_id": roomID})
	}

	rec := Record{
		RoomID:      roomID,
		SubmittedAt: a.now().UTC(),
		User:        user.Trimmed(),
		Feedbacks:   feedbacks,
	}

	id, err := a.primary.AppendSubmission(ctx, rec)
	if err != nil {
		span.SetStatus(codes.Error, "primary append failed")
		return apperrors.Wrap(apperrors.CodeStorageFailure, "append submission", err)
	}
	span.SetAttributes(attribute.String("submission.id", id))

	a.mirror(ctx, cfg, Stored{ID: id, Record: rec})
	return nil
}

// mirror appends the flattened rows to the secondary sink. The sink gets its
// own deadline so a slow mirror cannot hold the participant's request.
func (a *Assembler) mirror(ctx context.Context, cfg room.Config, stored Stored) {
	if a.secondary == nil {
		return
	}
	ctx, span := a.tracer.Start(ctx, "submission.Mirror")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, timeouts.SinkAppend)
	defer cancel()

	rows := FlattenRows(cfg, stored)
	if err := a.secondary.AppendRows(ctx, rows); err != nil {
		span.SetStatus(codes.Error, "secondary append failed")
		log.Printf("submission %s: secondary sink append failed: %v", stored.ID, err)
	}
}
