package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/roomvoice/roomvoice/internal/room"
	"github.com/roomvoice/roomvoice/internal/server/routepath"
	"github.com/roomvoice/roomvoice/internal/session"
	"github.com/roomvoice/roomvoice/internal/storage/memory"
)

const (
	testWorkspace = "workspace"
	testPassword  = "admin-password"
)

func newTestHandler(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.New()
	sessions, err := session.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	handler := NewHandler(store, nil, sessions, testWorkspace, testPassword)
	return handler.Routes(), store
}

func login(t *testing.T, handler http.Handler) *http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{"workspace":%q,"password":%q}`, testWorkspace, testPassword)
	req := httptest.NewRequest(http.MethodPost, routepath.APILogin, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body = %s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	t.Fatal("login did not set session cookie")
	return nil
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func seedRoom(t *testing.T, store *memory.Store, roomID, name string) room.Config {
	t.Helper()
	cfg, err := room.New(roomID, name, testWorkspace)
	if err != nil {
		t.Fatalf("room.New: %v", err)
	}
	cfg, err = cfg.AddEvent("Talk A")
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if err := store.SaveRoom(context.Background(), cfg); err != nil {
		t.Fatalf("SaveRoom: %v", err)
	}
	return cfg
}

func TestHealthz(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodGet, routepath.Healthz, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, routepath.APILogin, map[string]string{
		"workspace": testWorkspace,
		"password":  "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("cookie set on failed login")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	handler, _ := newTestHandler(t)
	cookie := login(t, handler)
	rec := doJSON(t, handler, http.MethodPost, routepath.APILogout, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("cookies = %+v", cookies)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	handler, store := newTestHandler(t)
	seedRoom(t, store, "demo", "Demo")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, routepath.APIRooms},
		{http.MethodPost, routepath.APIRooms},
		{http.MethodDelete, routepath.Room("demo")},
		{http.MethodPost, routepath.RoomConfig("demo")},
		{http.MethodGet, routepath.RoomFeedback("demo")},
		{http.MethodGet, routepath.RoomStats("demo")},
	}
	for _, tc := range paths {
		rec := doJSON(t, handler, tc.method, tc.path, map[string]string{}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", tc.method, tc.path, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Fatalf("%s %s body = %s", tc.method, tc.path, rec.Body.String())
		}
	}
}

func TestForgedSessionRejected(t *testing.T) {
	handler, _ := newTestHandler(t)
	other, _ := session.NewManager("other-secret", time.Hour)
	token, _ := other.Issue(testWorkspace)
	rec := doJSON(t, handler, http.MethodGet, routepath.APIRooms, nil, &http.Cookie{Name: session.CookieName, Value: token})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRoomCreateListDelete(t *testing.T) {
	handler, _ := newTestHandler(t)
	cookie := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, routepath.APIRooms, map[string]string{"name": "Demo Day"}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     string      `json:"id"`
		Config room.Config `json:"config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if !strings.HasPrefix(created.ID, "demo-day-") {
		t.Fatalf("id = %q", created.ID)
	}
	if created.Config.OwnerID != testWorkspace || !created.Config.ParticipantFields.Name.Required {
		t.Fatalf("config = %+v", created.Config)
	}

	rec = doJSON(t, handler, http.MethodGet, routepath.APIRooms, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Rooms []room.Metadata `json:"rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Rooms) != 1 || listed.Rooms[0].ID != created.ID {
		t.Fatalf("rooms = %+v", listed.Rooms)
	}

	rec = doJSON(t, handler, http.MethodDelete, routepath.Room(created.ID), nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodDelete, routepath.Room(created.ID), nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestRoomConfigGetIsPublic(t *testing.T) {
	handler, store := newTestHandler(t)
	seedRoom(t, store, "demo", "Demo")

	rec := doJSON(t, handler, http.MethodGet, routepath.RoomConfig("demo"), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cfg room.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.ID != "demo" || len(cfg.Events) != 1 {
		t.Fatalf("config = %+v", cfg)
	}

	rec = doJSON(t, handler, http.MethodGet, routepath.RoomConfig("missing"), nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", rec.Code)
	}
}

func TestRoomConfigPostPreservesOwnerAndChecksID(t *testing.T) {
	handler, store := newTestHandler(t)
	cfg := seedRoom(t, store, "demo", "Demo")
	cookie := login(t, handler)

	// Body id disagreeing with the path is rejected.
	bad := cfg.Clone()
	bad.ID = "other"
	rec := doJSON(t, handler, http.MethodPost, routepath.RoomConfig("demo"), bad, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatch status = %d", rec.Code)
	}

	// A config posted with a different owner keeps the stored one.
	update := cfg.Clone()
	update.OwnerID = "intruder"
	update.Metadata.OwnerID = "intruder"
	update.GlobalSettings.Title = "Updated"
	rec = doJSON(t, handler, http.MethodPost, routepath.RoomConfig("demo"), update, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", rec.Code, rec.Body.String())
	}

	saved, _, err := store.GetRoom(context.Background(), "demo")
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if saved.OwnerID != testWorkspace || saved.Metadata.OwnerID != testWorkspace {
		t.Fatalf("owner = %q / %q", saved.OwnerID, saved.Metadata.OwnerID)
	}
	if saved.GlobalSettings.Title != "Updated" {
		t.Fatalf("title = %q", saved.GlobalSettings.Title)
	}
}

func TestSubmitFeedbackEndToEnd(t *testing.T) {
	handler, store := newTestHandler(t)
	cfg := seedRoom(t, store, "demo", "Demo")
	eventID := cfg.Events[0].ID

	rec := doJSON(t, handler, http.MethodPost, routepath.APISubmit, map[string]any{
		"roomId":         "demo",
		"user":           map[string]string{"name": "Jo", "department": "CS"},
		"selectedEvents": []string{eventID},
		"feedbacks": map[string]map[string]any{
			eventID: {"q1": 5, "q2": "Great"},
		},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d body = %s", rec.Code, rec.Body.String())
	}

	cookie := login(t, handler)
	rec = doJSON(t, handler, http.MethodGet, routepath.RoomFeedback("demo"), nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback status = %d", rec.Code)
	}
	var feedbackBody struct {
		Header []string   `json:"header"`
		Rows   [][]string `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &feedbackBody); err != nil {
		t.Fatalf("decode feedback: %v", err)
	}
	if len(feedbackBody.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(feedbackBody.Rows))
	}
	row := feedbackBody.Rows[0]
	if row[1] != "Jo" || row[2] != "CS" {
		t.Fatalf("row = %v", row)
	}
	if !strings.Contains(row[6], "Overall Rating: 5") || !strings.Contains(row[6], "Comments: Great") {
		t.Fatalf("summary = %q", row[6])
	}

	rec = doJSON(t, handler, http.MethodGet, routepath.RoomStats("demo"), nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var statsBody struct {
		Summary struct {
			TotalSubmissions int     `json:"totalSubmissions"`
			AverageRating    float64 `json:"averageRating"`
		} `json:"summary"`
		Events []struct {
			Name   string  `json:"name"`
			Count  int     `json:"count"`
			Rating float64 `json:"rating"`
		} `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &statsBody); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if statsBody.Summary.TotalSubmissions != 1 || statsBody.Summary.AverageRating != 5 {
		t.Fatalf("summary = %+v", statsBody.Summary)
	}
	if len(statsBody.Events) != 1 || statsBody.Events[0].Name != "Talk A" || statsBody.Events[0].Count != 1 {
		t.Fatalf("events = %+v", statsBody.Events)
	}
}

func TestSubmitValidationErrors(t *testing.T) {
	handler, store := newTestHandler(t)
	cfg := seedRoom(t, store, "demo", "Demo")
	eventID := cfg.Events[0].ID

	tests := []struct {
		name     string
		payload  map[string]any
		wantCode string
		status   int
	}{
		{
			name: "missing participant name",
			payload: map[string]any{
				"roomId":         "demo",
				"user":           map[string]string{"department": "CS"},
				"selectedEvents": []string{eventID},
			},
			wantCode: "PARTICIPANT_FIELD_MISSING",
			status:   http.StatusBadRequest,
		},
		{
			name: "no events selected",
			payload: map[string]any{
				"roomId": "demo",
				"user":   map[string]string{"name": "Jo", "department": "CS"},
			},
			wantCode: "NO_EVENTS_SELECTED",
			status:   http.StatusBadRequest,
		},
		{
			name: "required answer missing",
			payload: map[string]any{
				"roomId":         "demo",
				"user":           map[string]string{"name": "Jo", "department": "CS"},
				"selectedEvents": []string{eventID},
				"feedbacks": map[string]map[string]any{
					eventID: {"q2": "only optional"},
				},
			},
			wantCode: "REQUIRED_ANSWER_MISSING",
			status:   http.StatusBadRequest,
		},
		{
			name: "unknown room",
			payload: map[string]any{
				"roomId": "missing",
				"user":   map[string]string{"name": "Jo", "department": "CS"},
			},
			wantCode: "NOT_FOUND",
			status:   http.StatusNotFound,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, routepath.APISubmit, tc.payload, nil)
			if rec.Code != tc.status {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
			}
			var body struct {
				Error string `json:"error"`
				Code  string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tc.wantCode || body.Error == "" {
				t.Fatalf("body = %+v, want code %q", body, tc.wantCode)
			}
		})
	}
}

func TestSubmitErrorsAreLocalized(t *testing.T) {
	handler, store := newTestHandler(t)
	seedRoom(t, store, "demo", "Demo")

	payload, _ := json.Marshal(map[string]any{
		"roomId": "demo",
		"user":   map[string]string{"name": "Jo", "department": "CS"},
	})
	req := httptest.NewRequest(http.MethodPost, routepath.APISubmit+"?lang=pt-BR", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Selecione pelo menos um evento para continuar." {
		t.Fatalf("error = %q", body.Error)
	}
}
