// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaType classifies the blob associated with an item.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// OrderUnset is the sort key applied to documents written before explicit
// ordering existed. It is large so legacy items sort after everything that
// has been dragged into place.
const OrderUnset = 9999

// Ext returns the storage extension derived from the media type. Note that
// quicktime videos are uploaded as .mov but still derive .mp4 here; this
// mirrors how previous-blob paths were always computed and keeps cleanup
// behaviour unchanged for existing data.
func (t MediaType) Ext() string {
	if t == MediaVideo {
		return "mp4"
	}
	return "jpg"
}

// Item is one salon record: a staff profile, a treatment-menu entry, or a
// news post. Items live as JSON documents in the items table and carry an
// explicit sort position maintained by drag reordering.
type Item struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	MediaURL         string    `json:"mediaURL"`
	MediaType        MediaType `json:"mediaType"`
	OriginalFileName string    `json:"originalFileName,omitempty"`
	Price            int       `json:"price"`
	TaxIncluded      bool      `json:"taxIncluded"`
	Order            int       `json:"order"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ItemPayload is the document body written on create and edit. Order is
// deliberately absent: only the reorder batch ever writes it, and edits
// must not clobber an item's position.
type ItemPayload struct {
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	MediaURL         string    `json:"mediaURL"`
	MediaType        MediaType `json:"mediaType"`
	OriginalFileName string    `json:"originalFileName,omitempty"`
	Price            *int      `json:"price,omitempty"`       // products only
	TaxIncluded      *bool     `json:"taxIncluded,omitempty"` // products only
}

// itemDoc mirrors the raw document shape. Pointer fields distinguish absent
// keys from zero values so decoding can apply defaults for documents written
// by older versions of the site.
type itemDoc struct {
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	MediaURL         *string    `json:"mediaURL"`
	ImageURL         *string    `json:"imageURL"` // legacy field name
	MediaType        *MediaType `json:"mediaType"`
	OriginalFileName string     `json:"originalFileName"`
	Price            *int       `json:"price"`
	TaxIncluded      *bool      `json:"taxIncluded"`
	Order            *int       `json:"order"`
}

// DecodeItem maps a raw stored document onto an Item, filling defaults:
// mediaURL falls back to the legacy imageURL key, mediaType defaults to
// image, taxIncluded to true, and order to OrderUnset so unordered legacy
// documents sort last.
func DecodeItem(id uuid.UUID, createdAt time.Time, doc json.RawMessage) (Item, error) {
	var d itemDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return Item{}, fmt.Errorf("decode item %s: %w", id, err)
	}

	item := Item{
		ID:               id,
		Title:            d.Title,
		Body:             d.Body,
		MediaType:        MediaImage,
		OriginalFileName: d.OriginalFileName,
		TaxIncluded:      true,
		Order:            OrderUnset,
		CreatedAt:        createdAt,
	}

	switch {
	case d.MediaURL != nil:
		item.MediaURL = *d.MediaURL
	case d.ImageURL != nil:
		item.MediaURL = *d.ImageURL
	}
	if d.MediaType != nil && *d.MediaType == MediaVideo {
		item.MediaType = MediaVideo
	}
	if d.Price != nil {
		item.Price = *d.Price
	}
	if d.TaxIncluded != nil {
		item.TaxIncluded = *d.TaxIncluded
	}
	if d.Order != nil {
		item.Order = *d.Order
	}

	return item, nil
}

// IsVideo reports whether the item's media is a video.
func (i *Item) IsVideo() bool {
	return i.MediaType == MediaVideo
}

// HasMedia reports whether the item has an uploaded blob associated.
func (i *Item) HasMedia() bool {
	return i.MediaURL != ""
}
