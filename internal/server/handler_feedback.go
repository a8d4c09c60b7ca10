package server

import (
	"net/http"
	"strings"

	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/server/httpx"
	"github.com/roomvoice/roomvoice/internal/submission"
)

// handleRoomFeedback returns the flattened tabular view of a room's
// submissions, newest-first.
func (h *Handler) handleRoomFeedback(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(r.PathValue("id"))
	ctx := httpx.RequestContext(r)

	cfg, found, err := h.store.GetRoom(ctx, roomID)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "get room", err))
		return
	}
	if !found {
		httpx.WriteError(w, apperrors.WithMetadata(apperrors.CodeNotFound, "room not found", map[string]string{"room_id": roomID}))
		return
	}

	stored, err := h.store.ListSubmissions(ctx, roomID)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "list submissions", err))
		return
	}

	rows := make([][]string, 0, len(stored))
	for _, record := range stored {
		rows = append(rows, submission.FlattenRows(cfg, record)...)
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"header": submission.RowHeader(),
		"rows":   rows,
	})
}

type statsSummary struct {
	TotalSubmissions int     `json:"totalSubmissions"`
	AverageRating    float64 `json:"averageRating"`
}

type statsEvent struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Rating float64 `json:"rating"`
}

// handleRoomStats returns per-event response counts and mean ratings.
func (h *Handler) handleRoomStats(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(r.PathValue("id"))
	ctx := httpx.RequestContext(r)

	cfg, found, err := h.store.GetRoom(ctx, roomID)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "get room", err))
		return
	}
	if !found {
		httpx.WriteError(w, apperrors.WithMetadata(apperrors.CodeNotFound, "room not found", map[string]string{"room_id": roomID}))
		return
	}

	stored, err := h.store.ListSubmissions(ctx, roomID)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "list submissions", err))
		return
	}

	stats := submission.Aggregate(cfg, stored)
	events := make([]statsEvent, 0, len(stats.Events))
	ratingSum := 0.0
	ratingCount := 0
	for _, es := range stats.Events {
		events = append(events, statsEvent{Name: es.Title, Count: es.Responses, Rating: es.AverageRating})
		ratingSum += es.AverageRating * float64(es.RatingCount)
		ratingCount += es.RatingCount
	}

	summary := statsSummary{TotalSubmissions: stats.TotalSubmissions}
	if ratingCount > 0 {
		summary.AverageRating = ratingSum / float64(ratingCount)
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"events":  events,
	})
}
