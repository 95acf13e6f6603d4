// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

// Package notes stores the canvas notes through the uniform db.Client.
// Mutations are recorded in the append-only audit_log table.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mosaic-dev/mosaic/internal/db"
)

// Note is one canvas note. FolderID is empty for unfiled notes.
type Note struct {
	ID        string
	Title     string
	Content   string
	FolderID  string
	Pinned    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Query filters ListNotes.
type Query struct {
	FolderID string
	Limit    int
}

const defaultListLimit = 100

// Store issues parameterized statements through a borrowed client. It
// does not own the client and never closes it.
type Store struct {
	client db.Client
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a notes store over the given client.
func NewStore(client db.Client, opts ...Option) *Store {
	s := &Store{client: client, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutNote upserts a note keyed on its id, minting an id when absent.
// UpdatedAt is always refreshed; CreatedAt defaults to now for new
// notes.
func (s *Store) PutNote(ctx context.Context, note *Note) error {
	if note.Title == "" && note.Content == "" {
		return fmt.Errorf("note title or content is required: %w", db.ErrInvalidInput)
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}

	now := s.now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	pinned := 0
	if note.Pinned {
		pinned = 1
	}

	const q = `INSERT OR REPLACE INTO notes (id, title, content, folder_id, is_pinned, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.client.Execute(ctx, db.SQL(q,
		note.ID, note.Title, note.Content, note.FolderID, pinned,
		formatTime(note.CreatedAt), formatTime(note.UpdatedAt),
	))
	if err != nil {
		return fmt.Errorf("upserting note %s: %w", note.ID, err)
	}

	s.audit(ctx, "note.put", note.ID)
	return nil
}

// GetNote returns the note with the given id, or db.ErrNotFound.
func (s *Store) GetNote(ctx context.Context, id string) (*Note, error) {
	res, err := s.client.Execute(ctx, db.SQL(`SELECT * FROM notes WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("getting note %s: %w", id, err)
	}
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("note %s: %w", id, db.ErrNotFound)
	}
	return noteFromRow(res.Rows[0]), nil
}

// ListNotes returns notes matching the query, most recently updated
// first.
func (s *Store) ListNotes(ctx context.Context, query Query) ([]*Note, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var res *db.Result
	var err error
	if query.FolderID != "" {
		res, err = s.client.Execute(ctx, db.SQL(
			`SELECT * FROM notes WHERE folder_id = ? ORDER BY updated_at DESC LIMIT ?`,
			query.FolderID, limit,
		))
	} else {
		res, err = s.client.Execute(ctx, db.SQL(
			`SELECT * FROM notes ORDER BY updated_at DESC LIMIT ?`, limit,
		))
	}
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	out := make([]*Note, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, noteFromRow(row))
	}
	return out, nil
}

// DeleteNote removes a note by id.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	res, err := s.client.Execute(ctx, db.SQL(`DELETE FROM notes WHERE id = ?`, id))
	if err != nil {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("note %s: %w", id, db.ErrNotFound)
	}

	s.audit(ctx, "note.delete", id)
	return nil
}

// audit appends a mutation record to the audit log. Audit failures are
// logged, never surfaced: the log must not block the write path.
func (s *Store) audit(ctx context.Context, action, noteID string) {
	details, err := json.Marshal(map[string]string{"note_id": noteID})
	if err != nil {
		details = []byte("{}")
	}

	_, err = s.client.Execute(ctx, db.SQL(
		`INSERT INTO audit_log (id, action, actor, details, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), action, "mosaic", string(details), formatTime(s.now()),
	))
	if err != nil {
		s.logger.Warn("skipping audit record",
			slog.String("action", action),
			slog.String("note_id", noteID),
			slog.String("error", err.Error()),
		)
	}
}

func noteFromRow(row db.Row) *Note {
	pinned, _ := asInt64(row.Value("is_pinned"))
	return &Note{
		ID:        asString(row.Value("id")),
		Title:     asString(row.Value("title")),
		Content:   asString(row.Value("content")),
		FolderID:  asString(row.Value("folder_id")),
		Pinned:    pinned != 0,
		CreatedAt: parseTime(row.Value("created_at")),
		UpdatedAt: parseTime(row.Value("updated_at")),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(db.TimeFormat)
}

func parseTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
