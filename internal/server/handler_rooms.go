package server

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/platform/requestctx"
	"github.com/roomvoice/roomvoice/internal/room"
	"github.com/roomvoice/roomvoice/internal/server/httpx"
)

// handleRoomsList returns the caller's room metadata, newest-first.
func (h *Handler) handleRoomsList(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	metas, err := h.store.ListRooms(ctx, requestctx.AdminIDFromContext(ctx))
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "list rooms", err))
		return
	}
	if metas == nil {
		metas = []room.Metadata{}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"rooms": metas})
}

type createRoomRequest struct {
	Name string `json:"name"`
}

// handleRoomCreate creates a room with the default configuration.
func (h *Handler) handleRoomCreate(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "invalid room payload")
		return
	}

	roomID, err := room.NewRoomID(req.Name)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	ctx := httpx.RequestContext(r)
	cfg, err := room.New(roomID, req.Name, requestctx.AdminIDFromContext(ctx))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.store.SaveRoom(ctx, cfg); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "save room", err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": cfg.ID, "config": cfg})
}

// handleRoomDelete removes a room and its submissions.
func (h *Handler) handleRoomDelete(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(r.PathValue("id"))
	ctx := httpx.RequestContext(r)

	existed, err := h.store.DeleteRoom(ctx, roomID)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "delete room", err))
		return
	}
	if !existed {
		httpx.WriteError(w, apperrors.WithMetadata(apperrors.CodeNotFound, "room not found", map[string]string{"room_id": roomID}))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleRoomConfigGet returns the full room configuration. This route is
// public so the participant page can render without a session.
func (h *Handler) handleRoomConfigGet(w http.ResponseWriter, r *http.Request) {
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
	_ = httpx.WriteJSON(w, http.StatusOK, cfg)
}

// handleRoomConfigPost replaces a room's configuration. The body id must
// match the path, and the stored owner always wins over the submitted one.
func (h *Handler) handleRoomConfigPost(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(r.PathValue("id"))
	ctx := httpx.RequestContext(r)

	var cfg room.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "invalid config payload")
		return
	}
	if cfg.ID != "" && cfg.ID != roomID {
		httpx.WriteError(w, apperrors.WithMetadata(apperrors.CodeRoomIDMismatch, "config id does not match path", map[string]string{
			"path_id": roomID,
			"body_id": cfg.ID,
		}))
		return
	}
	cfg.ID = roomID

	existing, found, err := h.store.GetRoom(ctx, roomID)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "get room", err))
		return
	}
	if found {
		cfg.OwnerID = existing.OwnerID
		cfg.Metadata.CreatedAt = existing.Metadata.CreatedAt
	} else if strings.TrimSpace(cfg.OwnerID) == "" {
		cfg.OwnerID = requestctx.AdminIDFromContext(ctx)
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.store.SaveRoom(ctx, cfg); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeStorageFailure, "save room", err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "config": cfg})
}
