// Package server hosts the roomvoice JSON API.
package server

import (
	"net/http"

	"github.com/roomvoice/roomvoice/internal/server/httpx"
	"github.com/roomvoice/roomvoice/internal/server/observability"
	"github.com/roomvoice/roomvoice/internal/server/routepath"
	"github.com/roomvoice/roomvoice/internal/session"
	"github.com/roomvoice/roomvoice/internal/sheet"
	"github.com/roomvoice/roomvoice/internal/storage"
	"github.com/roomvoice/roomvoice/internal/submission"
)

// Handler serves the API routes against a store, a secondary sheet sink,
// and a session manager.
type Handler struct {
	store     storage.Store
	sink      sheet.Sink
	sessions  *session.Manager
	assembler *submission.Assembler
	workspace string
	password  string
}

// NewHandler assembles the API handler. sink may be nil, in which case the
// secondary mirror is disabled.
func NewHandler(store storage.Store, sink sheet.Sink, sessions *session.Manager, workspace, password string) *Handler {
	var secondary submission.Secondary
	if sink != nil {
		secondary = sink
	}
	return &Handler{
		store:     store,
		sink:      sink,
		sessions:  sessions,
		assembler: submission.NewAssembler(store, secondary),
		workspace: workspace,
		password:  password,
	}
}

// Routes wires the HTTP routes with the shared middleware stack.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+routepath.Healthz, h.handleHealthz)
	mux.HandleFunc("POST "+routepath.APILogin, h.handleLogin)
	mux.HandleFunc("POST "+routepath.APILogout, h.handleLogout)
	mux.HandleFunc("POST "+routepath.APISubmit, h.handleSubmit)
	mux.HandleFunc("GET "+routepath.APIRoomsPrefix+"{id}/config", h.handleRoomConfigGet)

	mux.Handle("GET "+routepath.APIRooms, h.requireAuth(http.HandlerFunc(h.handleRoomsList)))
	mux.Handle("POST "+routepath.APIRooms, h.requireAuth(http.HandlerFunc(h.handleRoomCreate)))
	mux.Handle("DELETE "+routepath.APIRoomsPrefix+"{id}", h.requireAuth(http.HandlerFunc(h.handleRoomDelete)))
	mux.Handle("POST "+routepath.APIRoomsPrefix+"{id}/config", h.requireAuth(http.HandlerFunc(h.handleRoomConfigPost)))
	mux.Handle("GET "+routepath.APIRoomsPrefix+"{id}/feedback", h.requireAuth(http.HandlerFunc(h.handleRoomFeedback)))
	mux.Handle("GET "+routepath.APIRoomsPrefix+"{id}/stats", h.requireAuth(http.HandlerFunc(h.handleRoomStats)))

	return httpx.Chain(
		mux,
		httpx.RequestID(),
		observability.RequestLogger(),
		httpx.RecoverPanic(),
	)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
