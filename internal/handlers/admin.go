// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the salonpress server.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"net/http"

	"salonpress/internal/forms"
	"salonpress/internal/live"
	"salonpress/internal/render"
	"salonpress/internal/store"
	"salonpress/internal/upload"
)

// Admin groups the admin panel HTTP handlers and their dependencies.
// One Synchronizer and one reorder Coordinator exist per collection;
// form controllers are created per admin session through the registry.
type Admin struct {
	renderer *render.Renderer
	syncs    map[string]*live.Synchronizer
	coords   map[string]*live.Coordinator
	items    *store.ItemStore
	pipeline *upload.Pipeline // nil when object storage is not configured
	forms    *forms.Registry
	siteID   string
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(renderer *render.Renderer, syncs map[string]*live.Synchronizer, coords map[string]*live.Coordinator, items *store.ItemStore, pipeline *upload.Pipeline, formRegistry *forms.Registry, siteID string) *Admin {
	return &Admin{
		renderer: renderer,
		syncs:    syncs,
		coords:   coords,
		items:    items,
		pipeline: pipeline,
		forms:    formRegistry,
		siteID:   siteID,
	}
}

// writeJSON marshals v into the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError sends a {"error": msg} body with the given status code.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
