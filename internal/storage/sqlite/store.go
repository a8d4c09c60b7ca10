// Package sqlite provides a SQLite-backed roomvoice storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/roomvoice/roomvoice/internal/platform/id"
	"github.com/roomvoice/roomvoice/internal/platform/storage/sqlitemigrate"
	"github.com/roomvoice/roomvoice/internal/room"
	"github.com/roomvoice/roomvoice/internal/storage"
	"github.com/roomvoice/roomvoice/internal/storage/sqlite/migrations"
	"github.com/roomvoice/roomvoice/internal/submission"
)

// Store persists roomvoice state in SQLite. Room configurations are stored
// as JSON documents with a few indexed columns lifted out for listing;
// submissions are append-only rows.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	// modernc.org/sqlite only applies pragmas passed as _pragma=name(value).
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetRoom returns one room configuration by id.
func (s *Store) GetRoom(ctx context.Context, roomID string) (room.Config, bool, error) {
	if err := ctx.Err(); err != nil {
		return room.Config{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return room.Config{}, false, fmt.Errorf("storage is not configured")
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return room.Config{}, false, fmt.Errorf("room id is required")
	}

	var document string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT document FROM rooms WHERE id = ?`, roomID).Scan(&document)
	if err == sql.ErrNoRows {
		return room.Config{}, false, nil
	}
	if err != nil {
		return room.Config{}, false, fmt.Errorf("get room: %w", err)
	}

	var cfg room.Config
	if err := json.Unmarshal([]byte(document), &cfg); err != nil {
		return room.Config{}, false, fmt.Errorf("decode room document: %w", err)
	}
	return cfg, true, nil
}

// SaveRoom creates or replaces a room configuration document.
func (s *Store) SaveRoom(ctx context.Context, cfg room.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("room id is required")
	}

	createdAt := cfg.Metadata.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
		cfg.Metadata.CreatedAt = createdAt
	}

	document, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode room document: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rooms (id, owner_id, name, event_count, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   owner_id = excluded.owner_id,
		   name = excluded.name,
		   event_count = excluded.event_count,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		cfg.ID,
		cfg.OwnerID,
		cfg.Metadata.Name,
		len(cfg.Events),
		string(document),
		toMillis(createdAt),
		toMillis(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("save room: %w", err)
	}
	return nil
}

// ListRooms returns room metadata newest-first, optionally filtered by owner.
func (s *Store) ListRooms(ctx context.Context, ownerID string) ([]room.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `SELECT id, owner_id, name, event_count, created_at FROM rooms`
	args := []any{}
	if strings.TrimSpace(ownerID) != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []room.Metadata
	for rows.Next() {
		var meta room.Metadata
		var createdAt int64
		if err := rows.Scan(&meta.ID, &meta.OwnerID, &meta.Name, &meta.EventCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		meta.CreatedAt = fromMillis(createdAt)
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room rows: %w", err)
	}
	return out, nil
}

// DeleteRoom removes a room; submissions cascade with it.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return false, fmt.Errorf("room id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete room: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Deleting submissions explicitly keeps the contract independent of the
	// connection's foreign_keys pragma.
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE room_id = ?`, roomID); err != nil {
		return false, fmt.Errorf("delete room submissions: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, roomID)
	if err != nil {
		return false, fmt.Errorf("delete room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete room affected rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete room: %w", err)
	}
	return affected > 0, nil
}

// AppendSubmission stores one completed run and returns its generated id.
func (s *Store) AppendSubmission(ctx context.Context, rec submission.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
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
	document, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode submission document: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO submissions (id, room_id, submitted_at, document) VALUES (?, ?, ?, ?)`,
		submissionID,
		rec.RoomID,
		toMillis(rec.SubmittedAt),
		string(document),
	)
	if err != nil {
		return "", fmt.Errorf("append submission: %w", err)
	}
	return submissionID, nil
}

// ListSubmissions returns a room's submissions newest-first.
func (s *Store) ListSubmissions(ctx context.Context, roomID string) ([]submission.Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, fmt.Errorf("room id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, document FROM submissions WHERE room_id = ? ORDER BY submitted_at DESC, id DESC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []submission.Stored
	for rows.Next() {
		var stored submission.Stored
		var document string
		if err := rows.Scan(&stored.ID, &document); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		if err := json.Unmarshal([]byte(document), &stored.Record); err != nil {
			return nil, fmt.Errorf("decode submission document: %w", err)
		}
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return out, nil
}
