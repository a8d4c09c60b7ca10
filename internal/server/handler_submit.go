package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/roomvoice/roomvoice/internal/feedback"
	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/platform/i18n"
	"github.com/roomvoice/roomvoice/internal/server/httpx"
)

type submitRequest struct {
	RoomID         string                                `json:"roomId"`
	User           feedback.Participant                  `json:"user"`
	SelectedEvents []string                              `json:"selectedEvents"`
	Feedbacks      map[string]map[string]feedback.Answer `json:"feedbacks"`
}

// handleSubmit accepts one completed participant run. The payload walks the
// same gates as the interactive wizard: participant details, at least one
// active event, and every required answer present. Validation failures are
// localized for the participant.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	tag := i18n.ResolveTag(r)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "invalid submission payload")
		return
	}
	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "roomId is required")
		return
	}

	ctx := httpx.RequestContext(r)
	cfg, found, err := h.store.GetRoom(ctx, roomID)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "get room", err))
		return
	}
	if !found {
		h.writeLocalizedError(w, tag, apperrors.WithMetadata(apperrors.CodeNotFound, "room not found", map[string]string{"room_id": roomID}))
		return
	}

	run := feedback.NewRun(cfg, h.assembler)
	if err := run.SubmitDetails(req.User); err != nil {
		h.writeLocalizedError(w, tag, err)
		return
	}
	if err := run.SelectEvents(req.SelectedEvents); err != nil {
		h.writeLocalizedError(w, tag, err)
		return
	}
	for {
		event, ok := run.CurrentEvent()
		if !ok {
			break
		}
		if err := run.SubmitAnswers(ctx, req.Feedbacks[event.ID]); err != nil {
			h.writeLocalizedError(w, tag, err)
			return
		}
	}

	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// writeLocalizedError renders participant-facing errors in the request
// language while keeping the machine code for clients.
func (h *Handler) writeLocalizedError(w http.ResponseWriter, tag language.Tag, err error) {
	code := apperrors.CodeOf(err)
	_ = httpx.WriteJSON(w, apperrors.HTTPStatus(err), map[string]any{
		"error": i18n.LocalizeError(tag, err),
		"code":  string(code),
	})
}
