// Package memory provides an in-memory roomvoice storage implementation,
// used by tests and ephemeral deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roomvoice/roomvoice/internal/platform/id"
	"github.com/roomvoice/roomvoice/internal/room"
	"github.com/roomvoice/roomvoice/internal/storage"
	"github.com/roomvoice/roomvoice/internal/submission"
)

// Store keeps rooms and submissions in process memory.
type Store struct {
	mu          sync.RWMutex
	rooms       map[string]room.Config
	submissions map[string][]submission.Stored
}

var _ storage.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		rooms:       make(map[string]room.Config),
		submissions: make(map[string][]submission.Stored),
	}
}

// GetRoom returns one room configuration by id.
func (s *Store) GetRoom(ctx context.Context, roomID string) (room.Config, bool, error) {
	if err := ctx.Err(); err != nil {
		return room.Config{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.rooms[strings.TrimSpace(roomID)]
	if !ok {
		return room.Config{}, false, nil
	}
	return cfg.Clone(), true, nil
}

// SaveRoom creates or replaces a room configuration.
func (s *Store) SaveRoom(ctx context.Context, cfg room.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("room id is required")
	}
	if cfg.Metadata.CreatedAt.IsZero() {
		cfg.Metadata.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[cfg.ID] = cfg.Clone()
	return nil
}

// ListRooms returns room metadata newest-first, optionally filtered by owner.
func (s *Store) ListRooms(ctx context.Context, ownerID string) ([]room.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []room.Metadata
	for _, cfg := range s.rooms {
		if ownerID != "" && cfg.OwnerID != ownerID {
			continue
		}
		meta := cfg.Metadata
		meta.EventCount = len(cfg.Events)
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// DeleteRoom removes a room and its submissions.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	roomID = strings.TrimSpace(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return false, nil
	}
	delete(s.rooms, roomID)
	delete(s.submissions, roomID)
	return true, nil
}

// AppendSubmission stores one completed run and returns its generated id.
func (s *Store) AppendSubmission(ctx context.Context, rec submission.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(rec.RoomID) == "" {
		return "", fmt.Errorf("room id is required")
	}
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}
	submissionID, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate submission id: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[rec.RoomID] = append(s.submissions[rec.RoomID], submission.Stored{ID: submissionID, Record: rec})
	return submissionID, nil
}

// ListSubmissions returns a room's submissions newest-first.
func (s *Store) ListSubmissions(ctx context.Context, roomID string) ([]submission.Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.submissions[strings.TrimSpace(roomID)]
	out := make([]submission.Stored, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
