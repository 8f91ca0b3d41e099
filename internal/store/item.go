// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains the database access layer. Items are kept as JSON
// documents scoped by (collection, site), which is the shape the admin
// client writes; typed decoding happens in the sync layer.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salonpress/internal/models"
)

// ChangeNotifier broadcasts that a collection changed after a committed
// write. Live synchronizers subscribe to these notifications and reload
// their snapshot. A nil notifier disables broadcasting (tests).
type ChangeNotifier interface {
	NotifyChanged(ctx context.Context, collection, siteID string)
}

// RawDoc is one stored item document before decoding. CreatedAt carries the
// server-assigned creation timestamp and doubles as the stable tiebreaker
// when two documents share the same order key.
type RawDoc struct {
	ID        uuid.UUID
	Doc       json.RawMessage
	CreatedAt time.Time
}

// ItemStore handles all item document operations.
type ItemStore struct {
	db       *sql.DB
	notifier ChangeNotifier
}

// NewItemStore creates a new ItemStore. notifier may be nil.
func NewItemStore(db *sql.DB, notifier ChangeNotifier) *ItemStore {
	return &ItemStore{db: db, notifier: notifier}
}

// ListDocs returns every raw document in a collection, oldest first.
// Creation order is the stable input order the synchronizer sorts on.
func (s *ItemStore) ListDocs(ctx context.Context, collection, siteID string) ([]RawDoc, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc, created_at
		FROM items
		WHERE collection = $1 AND site_id = $2
		ORDER BY created_at, id
	`, collection, siteID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var docs []RawDoc
	for rows.Next() {
		var d RawDoc
		if err := rows.Scan(&d.ID, &d.Doc, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Create inserts a new document with a server-assigned creation timestamp.
// The id is chosen by the caller so the media blob can be uploaded to its
// deterministic path before the document exists.
func (s *ItemStore) Create(ctx context.Context, collection, siteID string, id uuid.UUID, payload models.ItemPayload) error {
	doc, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("create item marshal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (collection, site_id, id, doc)
		VALUES ($1, $2, $3, $4)
	`, collection, siteID, id, doc)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	s.notify(ctx, collection, siteID)
	return nil
}

// Update merges the payload into an existing document. Merging (rather
// than replacing) preserves keys the payload never carries — most
// importantly the order key written by reordering.
func (s *ItemStore) Update(ctx context.Context, collection, siteID string, id uuid.UUID, payload models.ItemPayload) error {
	doc, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("update item marshal: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET doc = doc || $4::jsonb
		WHERE collection = $1 AND site_id = $2 AND id = $3
	`, collection, siteID, id, doc)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update item: %s not found", id)
	}

	s.notify(ctx, collection, siteID)
	return nil
}

// SetOrder persists a full reordering: each document's order key becomes
// its zero-based index in ids. All updates commit in a single transaction
// so readers never observe a half-applied ordering.
func (s *ItemStore) SetOrder(ctx context.Context, collection, siteID string, ids []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set order begin: %w", err)
	}
	defer tx.Rollback()

	for index, id := range ids {
		_, err := tx.ExecContext(ctx, `
			UPDATE items SET doc = jsonb_set(doc, '{order}', to_jsonb($4::int))
			WHERE collection = $1 AND site_id = $2 AND id = $3
		`, collection, siteID, id, index)
		if err != nil {
			return fmt.Errorf("set order %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set order commit: %w", err)
	}

	s.notify(ctx, collection, siteID)
	return nil
}

// Delete removes a document. Blob cleanup is the caller's concern; the
// document delete succeeds regardless of storage state.
func (s *ItemStore) Delete(ctx context.Context, collection, siteID string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM items
		WHERE collection = $1 AND site_id = $2 AND id = $3
	`, collection, siteID, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete item: %s not found", id)
	}

	s.notify(ctx, collection, siteID)
	return nil
}

func (s *ItemStore) notify(ctx context.Context, collection, siteID string) {
	if s.notifier != nil {
		s.notifier.NotifyChanged(ctx, collection, siteID)
	}
}
