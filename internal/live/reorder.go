// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package live

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"salonpress/internal/models"
)

// Reorder returns a new list with the item fromID moved to the position of
// toID: the dragged item is removed from its old position and reinserted at
// the target's index (splice semantics, not a swap). Returns ok=false, and
// no list, when either id is missing or the two ids are equal.
func Reorder(items []models.Item, fromID, toID uuid.UUID) ([]models.Item, bool) {
	if fromID == toID {
		return nil, false
	}

	from, to := -1, -1
	for i, item := range items {
		switch item.ID {
		case fromID:
			from = i
		case toID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil, false
	}

	out := slices.Clone(items)
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = slices.Insert(out, to, moved)
	return out, true
}

// OrderPersister persists a complete ordering as one atomic batch.
// Satisfied by *store.ItemStore.
type OrderPersister interface {
	SetOrder(ctx context.Context, collection, siteID string, ids []uuid.UUID) error
}

// Coordinator turns drag-end events into an optimistic local reorder plus
// a persisted batch write.
type Coordinator struct {
	sync  *Synchronizer
	store OrderPersister
}

// NewCoordinator creates a Coordinator for one synchronized collection.
func NewCoordinator(sync *Synchronizer, store OrderPersister) *Coordinator {
	return &Coordinator{sync: sync, store: store}
}

// Move handles a drag-end: fromID was dropped on toID. The new sequence is
// applied to the local snapshot immediately, then every item's zero-based
// index is persisted as its order key in a single batch. A failed batch
// propagates to the caller; the optimistic snapshot is intentionally left
// in place and self-heals on the next change notification.
func (c *Coordinator) Move(ctx context.Context, fromID, toID uuid.UUID) error {
	next, ok := Reorder(c.sync.Items(), fromID, toID)
	if !ok {
		return nil
	}

	ids := make([]uuid.UUID, len(next))
	for i := range next {
		next[i].Order = i
		ids[i] = next[i].ID
	}

	c.sync.replace(next)

	return c.store.SetOrder(ctx, c.sync.collection, c.sync.siteID, ids)
}
