// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package live

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"salonpress/internal/models"
	"salonpress/internal/store"
)

// DocSource loads the raw documents of one collection. Satisfied by
// *store.ItemStore; tests supply fakes.
type DocSource interface {
	ListDocs(ctx context.Context, collection, siteID string) ([]store.RawDoc, error)
}

// Synchronizer maintains the sorted in-memory snapshot of one collection.
// Run subscribes to change notifications and refreshes on each one;
// consumers read the snapshot with Items or register a listener with
// Subscribe. All methods are safe for concurrent use.
type Synchronizer struct {
	source     DocSource
	client     *redis.Client // nil disables the live subscription (tests)
	collection string
	siteID     string

	mu        sync.RWMutex
	items     []models.Item
	listeners map[int]func([]models.Item)
	nextID    int
}

// New creates a Synchronizer for one collection of one site.
func New(source DocSource, client *redis.Client, collection, siteID string) *Synchronizer {
	return &Synchronizer{
		source:     source,
		client:     client,
		collection: collection,
		siteID:     siteID,
		listeners:  make(map[int]func([]models.Item)),
	}
}

// Collection returns the collection this synchronizer tracks.
func (s *Synchronizer) Collection() string { return s.collection }

// SiteID returns the site this synchronizer is scoped to.
func (s *Synchronizer) SiteID() string { return s.siteID }

// Items returns a copy of the current snapshot.
func (s *Synchronizer) Items() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Find returns the snapshot item with the given id, if present.
func (s *Synchronizer) Find(id uuid.UUID) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.Item{}, false
}

// Subscribe registers a listener invoked with the full snapshot after every
// replacement. The returned disposer unregisters it; after disposal no
// further calls are made.
func (s *Synchronizer) Subscribe(fn func([]models.Item)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Refresh reloads the collection from the source and replaces the snapshot.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	docs, err := s.source.ListDocs(ctx, s.collection, s.siteID)
	if err != nil {
		return err
	}
	s.replace(BuildSnapshot(docs))
	return nil
}

// Run performs an initial refresh and then blocks, refreshing on every
// change notification until the context is cancelled. A failed refresh is
// logged and retried on the next notification.
func (s *Synchronizer) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	if s.client == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	sub := s.client.Subscribe(ctx, channelName(s.collection, s.siteID))
	defer sub.Close()

	slog.Info("live synchronizer started", "collection", s.collection, "site", s.siteID)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.Refresh(ctx); err != nil {
				slog.Error("snapshot refresh failed",
					"collection", s.collection, "error", err)
			}
		}
	}
}

// replace swaps in a new snapshot and notifies listeners. Listeners are
// called outside the write lock with their own copy of the list.
func (s *Synchronizer) replace(items []models.Item) {
	s.mu.Lock()
	s.items = items
	fns := make([]func([]models.Item), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(slices.Clone(items))
	}
}
