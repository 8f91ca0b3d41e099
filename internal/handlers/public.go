// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"salonpress/internal/cache"
	"salonpress/internal/live"
	"salonpress/internal/render"
)

// homeNewsCount is how many recent news entries the homepage shows.
const homeNewsCount = 3

// Public groups the public site page handlers. Pages are rendered from
// the in-memory collection snapshots and cached whole in Valkey.
type Public struct {
	renderer  *render.Renderer
	syncs     map[string]*live.Synchronizer
	pageCache *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil,
// which disables caching (used in tests).
func NewPublic(renderer *render.Renderer, syncs map[string]*live.Synchronizer, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:  renderer,
		syncs:     syncs,
		pageCache: pageCache,
	}
}

// servePage renders a template with the given data, going through the
// page cache when one is configured.
func (h *Public) servePage(w http.ResponseWriter, r *http.Request, cacheKey, template string, data *render.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if h.pageCache != nil {
		if html, ok := h.pageCache.Get(r.Context(), cacheKey); ok {
			w.Write(html)
			return
		}
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, nil, template, data); err != nil {
		slog.Error("page render failed", "template", template, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if h.pageCache != nil {
		h.pageCache.Set(r.Context(), cacheKey, buf.Bytes())
	}
	w.Write(buf.Bytes())
}

// Home renders the landing page with the latest news.
func (h *Public) Home(w http.ResponseWriter, r *http.Request) {
	var news any
	if sync := h.syncs["news"]; sync != nil {
		items := sync.Items()
		if len(items) > homeNewsCount {
			items = items[:homeNewsCount]
		}
		news = items
	}

	h.servePage(w, r, cache.HomepageKey(), "home", &render.PageData{
		Section: "home",
		Data:    map[string]any{"News": news},
	})
}

// Staffs renders the staff listing page.
func (h *Public) Staffs(w http.ResponseWriter, r *http.Request) {
	h.collectionPage(w, r, "staffs", "スタッフ紹介")
}

// Products renders the treatment menu page.
func (h *Public) Products(w http.ResponseWriter, r *http.Request) {
	h.collectionPage(w, r, "products", "メニュー")
}

// News renders the news listing page.
func (h *Public) News(w http.ResponseWriter, r *http.Request) {
	h.collectionPage(w, r, "news", "お知らせ")
}

// Stores renders the static store information page.
func (h *Public) Stores(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, "stores", "stores", &render.PageData{
		Title:   "店舗情報",
		Section: "stores",
	})
}

// collectionPage renders one collection's listing template.
func (h *Public) collectionPage(w http.ResponseWriter, r *http.Request, collection, title string) {
	sync := h.syncs[collection]
	if sync == nil {
		http.NotFound(w, r)
		return
	}

	h.servePage(w, r, collection, collection, &render.PageData{
		Title:   title,
		Section: collection,
		Data:    map[string]any{"Items": sync.Items()},
	})
}
