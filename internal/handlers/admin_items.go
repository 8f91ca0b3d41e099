// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"salonpress/internal/forms"
	"salonpress/internal/live"
	"salonpress/internal/middleware"
	"salonpress/internal/models"
	"salonpress/internal/render"
	"salonpress/internal/upload"
)

// maxFormMemory bounds in-memory multipart parsing; larger parts spill
// to temp files.
const maxFormMemory = 64 << 20

// itemView is the JSON shape the admin front-end consumes.
type itemView struct {
	ID               uuid.UUID        `json:"id"`
	Title            string           `json:"title"`
	Body             string           `json:"body"`
	MediaURL         string           `json:"mediaUrl"`
	MediaType        models.MediaType `json:"mediaType"`
	OriginalFileName string           `json:"originalFileName,omitempty"`
	Price            int              `json:"price"`
	TaxIncluded      bool             `json:"taxIncluded"`
	Order            int              `json:"order"`
	CreatedAt        time.Time        `json:"createdAt"`
}

func toView(item models.Item) itemView {
	return itemView{
		ID:               item.ID,
		Title:            item.Title,
		Body:             item.Body,
		MediaURL:         item.MediaURL,
		MediaType:        item.MediaType,
		OriginalFileName: item.OriginalFileName,
		Price:            item.Price,
		TaxIncluded:      item.TaxIncluded,
		Order:            item.Order,
		CreatedAt:        item.CreatedAt,
	}
}

// sync resolves the synchronizer for the collection in the URL, or nil
// if the collection is unknown.
func (h *Admin) sync(r *http.Request) *live.Synchronizer {
	return h.syncs[chi.URLParam(r, "collection")]
}

// controller resolves the per-session form controller for the collection.
func (h *Admin) controller(r *http.Request, collection string) *forms.Controller {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return nil
	}
	return h.forms.Get(sess.ID, collection)
}

// Home redirects to the first collection's item list.
func (h *Admin) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/staffs", http.StatusSeeOther)
}

// ItemsPage renders the admin item management page for a collection.
func (h *Admin) ItemsPage(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if h.syncs[collection] == nil {
		http.NotFound(w, r)
		return
	}
	h.renderer.Page(w, r, "admin", &render.PageData{
		Title:   "管理画面",
		Section: collection,
	})
}

// ListItems returns the collection's items sorted by display order.
func (h *Admin) ListItems(w http.ResponseWriter, r *http.Request) {
	sync := h.sync(r)
	if sync == nil {
		writeJSONError(w, http.StatusNotFound, "unknown collection")
		return
	}

	items := sync.Items()
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, toView(item))
	}
	writeJSON(w, http.StatusOK, views)
}

// Events streams a server-sent event whenever the collection's snapshot
// changes. The client re-fetches the item list on every event.
func (h *Admin) Events(w http.ResponseWriter, r *http.Request) {
	sync := h.sync(r)
	if sync == nil {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Coalesce bursts: the channel holds at most one pending wakeup.
	changed := make(chan struct{}, 1)
	unsubscribe := sync.Subscribe(func([]models.Item) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			fmt.Fprint(w, "event: change\ndata: {}\n\n")
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// CreateItem handles the add-form submission: multipart fields plus an
// optional media file, run through the form controller's save.
func (h *Admin) CreateItem(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if h.syncs[collection] == nil {
		writeJSONError(w, http.StatusNotFound, "unknown collection")
		return
	}

	ctrl := h.controller(r, collection)
	if ctrl == nil {
		writeJSONError(w, http.StatusUnauthorized, "no session")
		return
	}
	if !ctrl.OpenAdd() {
		writeJSONError(w, http.StatusConflict, "an upload is in progress")
		return
	}

	h.saveForm(w, r, ctrl, collection)
}

// UpdateItem handles the edit-form submission for an existing item.
func (h *Admin) UpdateItem(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	sync := h.syncs[collection]
	if sync == nil {
		writeJSONError(w, http.StatusNotFound, "unknown collection")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	item, ok := sync.Find(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "item not found")
		return
	}

	ctrl := h.controller(r, collection)
	if ctrl == nil {
		writeJSONError(w, http.StatusUnauthorized, "no session")
		return
	}
	if !ctrl.OpenEdit(item) {
		writeJSONError(w, http.StatusConflict, "an upload is in progress")
		return
	}

	h.saveForm(w, r, ctrl, collection)
}

// saveForm stages the multipart form fields into the controller and runs
// the save. Shared by create and update.
func (h *Admin) saveForm(w http.ResponseWriter, r *http.Request, ctrl *forms.Controller, collection string) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		ctrl.Close()
		writeJSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	title := r.FormValue("title")
	body := r.FormValue("body")

	price := 0
	if collection == "products" {
		if raw := r.FormValue("price"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				ctrl.Close()
				writeJSONError(w, http.StatusBadRequest, "価格が範囲外です。")
				return
			}
			price = parsed
		}
	}

	if msg := validateItemForm(title, body, price); msg != "" {
		ctrl.Close()
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	ctrl.SetFields(title, body)
	if collection == "products" {
		taxIncluded := r.FormValue("taxIncluded") != ""
		ctrl.SetPrice(&price, &taxIncluded)
	}

	file, err := formFile(r)
	if err != nil {
		ctrl.Close()
		writeJSONError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	if file != nil {
		if err := upload.Validate(*file); err != nil {
			ctrl.Close()
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		ctrl.SetFile(file)
	}

	if err := ctrl.Save(r.Context()); err != nil {
		slog.Warn("item save failed", "collection", collection, "error", err)
		writeJSONError(w, statusForFormError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// formFile extracts the optional media file from the multipart form.
// Returns nil when no file was attached.
func formFile(r *http.Request) (*upload.File, error) {
	f, header, err := r.FormFile("media")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType := header.Header.Get("Content-Type")
	return &upload.File{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// statusForFormError maps controller save errors to HTTP status codes.
func statusForFormError(err error) int {
	switch {
	case errors.Is(err, forms.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, forms.ErrClosed),
		errors.Is(err, forms.ErrTitleRequired),
		errors.Is(err, forms.ErrFileRequired),
		errors.Is(err, forms.ErrKeywordsRequired),
		errors.Is(err, upload.ErrUnsupportedType),
		errors.Is(err, upload.ErrVideoTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DeleteItem removes an item document and its stored media blob.
func (h *Admin) DeleteItem(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	sync := h.syncs[collection]
	if sync == nil {
		writeJSONError(w, http.StatusNotFound, "unknown collection")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	item, ok := sync.Find(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.items.Delete(r.Context(), collection, h.siteID, id); err != nil {
		slog.Error("item delete failed", "collection", collection, "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	// Blob removal is best-effort; an orphan in storage is harmless.
	if h.pipeline != nil && item.HasMedia() {
		h.pipeline.Remove(r.Context(), collection, item)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// reorderRequest is the drag-and-drop reorder payload: move the item
// with id "from" to the position of the item with id "to".
type reorderRequest struct {
	From uuid.UUID `json:"from"`
	To   uuid.UUID `json:"to"`
}

// ReorderItems moves one item to a new position and persists the new
// zero-based order for the whole collection in a single transaction.
func (h *Admin) ReorderItems(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	coord := h.coords[collection]
	if coord == nil {
		writeJSONError(w, http.StatusNotFound, "unknown collection")
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid reorder payload")
		return
	}

	if err := coord.Move(r.Context(), req.From, req.To); err != nil {
		slog.Error("reorder failed", "collection", collection, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "reorder failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UploadProgress reports the session's current upload percentage for a
// collection. Returns -1 when no upload is in flight.
func (h *Admin) UploadProgress(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if h.syncs[collection] == nil {
		writeJSONError(w, http.StatusNotFound, "unknown collection")
		return
	}

	ctrl := h.controller(r, collection)
	if ctrl == nil {
		writeJSONError(w, http.StatusUnauthorized, "no session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"progress": ctrl.Progress()})
}
