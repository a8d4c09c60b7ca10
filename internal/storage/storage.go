// Package storage defines persistence contracts for room configurations and
// feedback submissions.
package storage

import (
	"context"

	"github.com/roomvoice/roomvoice/internal/room"
	"github.com/roomvoice/roomvoice/internal/submission"
)

// Store persists room configurations and append-only submission records.
// Implementations are chosen at startup; the rest of the program only sees
// this interface.
type Store interface {
	// GetRoom returns the configuration for a room, reporting absence
	// without an error.
	GetRoom(ctx context.Context, roomID string) (room.Config, bool, error)
	// SaveRoom creates or replaces a room configuration.
	SaveRoom(ctx context.Context, cfg room.Config) error
	// ListRooms returns room metadata newest-first. An empty ownerID lists
	// every room.
	ListRooms(ctx context.Context, ownerID string) ([]room.Metadata, error)
	// DeleteRoom removes a room and its submissions, reporting whether the
	// room existed.
	DeleteRoom(ctx context.Context, roomID string) (bool, error)
	// AppendSubmission stores one completed run and returns its id.
	AppendSubmission(ctx context.Context, rec submission.Record) (string, error)
	// ListSubmissions returns a room's submissions newest-first.
	ListSubmissions(ctx context.Context, roomID string) ([]submission.Stored, error)
	// Close releases the underlying resources.
	Close() error
}
