// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

// Package graph stores the canvas knowledge graph — entities and typed
// edges — through the uniform db.Client, so it runs identically on the
// real engine and the in-memory interpreter.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mosaic-dev/mosaic/internal/db"
)

// Entity is a node in the knowledge graph. Aliases and Attributes are
// persisted as JSON blobs.
type Entity struct {
	ID         string
	Label      string
	Kind       string
	Subtype    string
	Aliases    []string
	Attributes map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Edge is a directed, typed relationship between two entities.
type Edge struct {
	ID            string
	SourceID      string
	TargetID      string
	RelType       string
	Confidence    float64
	Bidirectional bool
	CreatedAt     time.Time
}

// EntityQuery filters FindEntities.
type EntityQuery struct {
	Kind  string
	Limit int
}

const defaultFindLimit = 100

// Store issues parameterized statements through a borrowed client. It
// does not own the client and never closes it.
type Store struct {
	client db.Client
	logger *slog.Logger
}

// NewStore creates a graph store over the given client.
func NewStore(client db.Client) *Store {
	return &Store{client: client, logger: slog.Default()}
}

// PutEntity upserts an entity keyed on its id, minting an id when
// absent. UpdatedAt is always refreshed; CreatedAt defaults to now for
// new entities.
func (s *Store) PutEntity(ctx context.Context, entity *Entity) error {
	if entity.Label == "" || entity.Kind == "" {
		return fmt.Errorf("entity label and kind are required: %w", db.ErrInvalidInput)
	}
	if entity.ID == "" {
		entity.ID = uuid.NewString()
	}

	aliases, err := json.Marshal(entity.Aliases)
	if err != nil {
		return fmt.Errorf("marshalling aliases for entity %s: %w", entity.ID, err)
	}
	attrs := []byte("{}")
	if entity.Attributes != nil {
		attrs, err = json.Marshal(entity.Attributes)
		if err != nil {
			return fmt.Errorf("marshalling attributes for entity %s: %w", entity.ID, err)
		}
	}

	now := time.Now().UTC()
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	entity.UpdatedAt = now

	const q = `INSERT OR REPLACE INTO entities (id, label, kind, subtype, aliases, attributes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.client.Execute(ctx, db.SQL(q,
		entity.ID, entity.Label, entity.Kind, entity.Subtype,
		string(aliases), string(attrs),
		formatTime(entity.CreatedAt), formatTime(entity.UpdatedAt),
	))
	if err != nil {
		return fmt.Errorf("upserting entity %s: %w", entity.ID, err)
	}
	return nil
}

// GetEntity returns the entity with the given id, or db.ErrNotFound.
func (s *Store) GetEntity(ctx context.Context, id string) (*Entity, error) {
	res, err := s.client.Execute(ctx, db.SQL(`SELECT * FROM entities WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("getting entity %s: %w", id, err)
	}
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("entity %s: %w", id, db.ErrNotFound)
	}
	return s.entityFromRow(res.Rows[0]), nil
}

// FindEntities returns entities matching the query, ordered by label.
func (s *Store) FindEntities(ctx context.Context, query EntityQuery) ([]*Entity, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}

	var res *db.Result
	var err error
	if query.Kind != "" {
		res, err = s.client.Execute(ctx, db.SQL(
			`SELECT * FROM entities WHERE kind = ? ORDER BY label ASC LIMIT ?`,
			query.Kind, limit,
		))
	} else {
		res, err = s.client.Execute(ctx, db.SQL(
			`SELECT * FROM entities ORDER BY label ASC LIMIT ?`, limit,
		))
	}
	if err != nil {
		return nil, fmt.Errorf("finding entities: %w", err)
	}

	entities := make([]*Entity, 0, len(res.Rows))
	for _, row := range res.Rows {
		entities = append(entities, s.entityFromRow(row))
	}
	return entities, nil
}

// CountEntities returns the number of entities, optionally restricted
// to a kind.
func (s *Store) CountEntities(ctx context.Context, kind string) (int64, error) {
	var res *db.Result
	var err error
	if kind != "" {
		res, err = s.client.Execute(ctx, db.SQL(`SELECT COUNT(*) AS count FROM entities WHERE kind = ?`, kind))
	} else {
		res, err = s.client.Execute(ctx, db.SQL(`SELECT COUNT(*) AS count FROM entities`))
	}
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	if len(res.Rows) == 0 {
		return 0, nil
	}
	n, _ := asInt64(res.Rows[0].Value("count"))
	return n, nil
}

// DeleteEntity removes an entity and every edge touching it.
func (s *Store) DeleteEntity(ctx context.Context, id string) error {
	res, err := s.client.Execute(ctx, db.SQL(`DELETE FROM entities WHERE id = ?`, id))
	if err != nil {
		return fmt.Errorf("deleting entity %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("entity %s: %w", id, db.ErrNotFound)
	}

	// Referential integrity is managed here, not by the schema.
	_, err = s.client.Batch(ctx, []db.Statement{
		db.SQL(`DELETE FROM edges WHERE source_id = ?`, id),
		db.SQL(`DELETE FROM edges WHERE target_id = ?`, id),
	})
	if err != nil {
		return fmt.Errorf("deleting edges for entity %s: %w", id, err)
	}
	return nil
}

// PutEdge appends an edge, minting an id when absent. A zero
// Confidence defaults to 1.0.
func (s *Store) PutEdge(ctx context.Context, edge *Edge) error {
	if edge.SourceID == "" || edge.TargetID == "" || edge.RelType == "" {
		return fmt.Errorf("edge source, target, and rel_type are required: %w", db.ErrInvalidInput)
	}
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	if edge.Confidence == 0 {
		edge.Confidence = 1.0
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}

	bidirectional := 0
	if edge.Bidirectional {
		bidirectional = 1
	}

	const q = `INSERT INTO edges (id, source_id, target_id, rel_type, confidence, bidirectional, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.client.Execute(ctx, db.SQL(q,
		edge.ID, edge.SourceID, edge.TargetID, edge.RelType,
		edge.Confidence, bidirectional, formatTime(edge.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("inserting edge %s: %w", edge.ID, err)
	}
	return nil
}

// EdgesFrom returns the edges leaving the given entity, oldest first.
func (s *Store) EdgesFrom(ctx context.Context, sourceID string) ([]*Edge, error) {
	res, err := s.client.Execute(ctx, db.SQL(
		`SELECT * FROM edges WHERE source_id = ? ORDER BY created_at ASC`, sourceID,
	))
	if err != nil {
		return nil, fmt.Errorf("listing edges from %s: %w", sourceID, err)
	}

	edges := make([]*Edge, 0, len(res.Rows))
	for _, row := range res.Rows {
		edges = append(edges, edgeFromRow(row))
	}
	return edges, nil
}

// DeleteEdge removes a single edge by id.
func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	res, err := s.client.Execute(ctx, db.SQL(`DELETE FROM edges WHERE id = ?`, id))
	if err != nil {
		return fmt.Errorf("deleting edge %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("edge %s: %w", id, db.ErrNotFound)
	}
	return nil
}

func (s *Store) entityFromRow(row db.Row) *Entity {
	entity := &Entity{
		ID:      asString(row.Value("id")),
		Label:   asString(row.Value("label")),
		Kind:    asString(row.Value("kind")),
		Subtype: asString(row.Value("subtype")),
	}

	if raw := asString(row.Value("aliases")); raw != "" && raw != "[]" {
		if err := json.Unmarshal([]byte(raw), &entity.Aliases); err != nil {
			s.logger.Warn("skipping corrupt entity aliases",
				slog.String("entity_id", entity.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if raw := asString(row.Value("attributes")); raw != "" && raw != "{}" {
		if err := json.Unmarshal([]byte(raw), &entity.Attributes); err != nil {
			s.logger.Warn("skipping corrupt entity attributes",
				slog.String("entity_id", entity.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	entity.CreatedAt = parseTime(row.Value("created_at"))
	entity.UpdatedAt = parseTime(row.Value("updated_at"))
	return entity
}

func edgeFromRow(row db.Row) *Edge {
	confidence, _ := asFloat(row.Value("confidence"))
	bidirectional, _ := asInt64(row.Value("bidirectional"))
	return &Edge{
		ID:            asString(row.Value("id")),
		SourceID:      asString(row.Value("source_id")),
		TargetID:      asString(row.Value("target_id")),
		RelType:       asString(row.Value("rel_type")),
		Confidence:    confidence,
		Bidirectional: bidirectional != 0,
		CreatedAt:     parseTime(row.Value("created_at")),
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

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
