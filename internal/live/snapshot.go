// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package live keeps an in-memory, sorted copy of each item collection in
// step with the database. Writes publish a change notification over Valkey
// pub/sub; each Synchronizer reloads its collection on every notification
// and atomically swaps in a freshly sorted snapshot, so readers always see
// a fully consistent list. The database remains the source of truth: local
// optimistic mutations (reordering) are confirmed or corrected by the next
// notification.
package live

import (
	"log/slog"
	"sort"

	"salonpress/internal/models"
	"salonpress/internal/store"
)

// BuildSnapshot decodes raw documents into items and returns them sorted
// ascending by order. The sort is stable, so items sharing an order key
// keep their document creation order. Documents that fail to decode are
// logged and skipped rather than poisoning the whole snapshot.
func BuildSnapshot(docs []store.RawDoc) []models.Item {
	items := make([]models.Item, 0, len(docs))
	for _, d := range docs {
		item, err := models.DecodeItem(d.ID, d.CreatedAt, d.Doc)
		if err != nil {
			slog.Warn("skipping undecodable item document", "id", d.ID, "error", err)
			continue
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
	return items
}
