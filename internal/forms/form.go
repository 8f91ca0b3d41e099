// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package forms holds the server-side state of the admin item editor: a
// two-mode (add/edit) form whose save operation composes validation, the
// media upload pipeline, and a single document write. While an upload is
// in flight every mutating action is refused, which serializes document
// writes per editing session.
package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"salonpress/internal/models"
	"salonpress/internal/upload"
)

// Mode is the editor state.
type Mode string

const (
	ModeClosed Mode = "closed"
	ModeAdd    Mode = "add"
	ModeEdit   Mode = "edit"
)

// ProgressIdle marks "no upload in progress", distinct from an upload that
// is underway at 0%.
const ProgressIdle = -1

// Validation and state errors surfaced to the admin client.
var (
	ErrBusy             = errors.New("an upload is in progress")
	ErrClosed           = errors.New("the form is not open")
	ErrTitleRequired    = errors.New("title is required")
	ErrFileRequired     = errors.New("a media file is required")
	ErrKeywordsRequired = errors.New("a title and at least one keyword are required")
)

// DocWriter persists single item documents. Satisfied by *store.ItemStore.
type DocWriter interface {
	Create(ctx context.Context, collection, siteID string, id uuid.UUID, payload models.ItemPayload) error
	Update(ctx context.Context, collection, siteID string, id uuid.UUID, payload models.ItemPayload) error
}

// Uploader runs the media pipeline. Satisfied by *upload.Pipeline.
type Uploader interface {
	Save(ctx context.Context, collection string, itemID uuid.UUID, f upload.File, prev *models.Item, progress func(int)) (upload.Result, error)
}

// TextGenerator produces an intro text from a name and keywords.
// Satisfied by the AI registry's intro helper; may be absent.
type TextGenerator interface {
	IntroText(ctx context.Context, name string, keywords []string) (string, error)
}

// Controller is the state machine behind one admin editing surface for one
// collection. All methods are safe for concurrent use; the upload lock
// guarantees at most one save is in flight at a time.
type Controller struct {
	collection string
	siteID     string
	docs       DocWriter
	uploader   Uploader      // nil when object storage is not configured
	gen        TextGenerator // nil when no AI provider is configured

	mu          sync.Mutex
	mode        Mode
	editing     *models.Item
	title       string
	body        string
	price       *int
	taxIncluded *bool
	file        *upload.File
	keywords    []string
	progress    int
	aiBusy      bool
}

// NewController creates a closed controller for one collection.
func NewController(docs DocWriter, uploader Uploader, gen TextGenerator, collection, siteID string) *Controller {
	return &Controller{
		collection: collection,
		siteID:     siteID,
		docs:       docs,
		uploader:   uploader,
		gen:        gen,
		mode:       ModeClosed,
		progress:   ProgressIdle,
	}
}

// Mode returns the current editor state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Uploading reports whether a save's upload is in flight.
func (c *Controller) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress != ProgressIdle
}

// Progress returns the current upload percentage, or ProgressIdle.
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// OpenAdd switches to add mode with blank fields. A no-op (returning
// false) while an upload is in progress.
func (c *Controller) OpenAdd() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress != ProgressIdle {
		return false
	}
	c.resetLocked()
	c.mode = ModeAdd
	return true
}

// OpenEdit switches to edit mode pre-filled from an existing item. A no-op
// while an upload is in progress.
func (c *Controller) OpenEdit(item models.Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress != ProgressIdle {
		return false
	}
	c.resetLocked()
	c.mode = ModeEdit
	c.editing = &item
	c.title = item.Title
	c.body = item.Body
	return true
}

// Close cancels editing and clears transient fields. A no-op while an
// upload is in progress.
func (c *Controller) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress != ProgressIdle {
		return false
	}
	c.resetLocked()
	c.mode = ModeClosed
	return true
}

// SetFields stages the text inputs. Ignored while uploading.
func (c *Controller) SetFields(title, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress != ProgressIdle {
		return
	}
	c.title = title
	c.body = body
}

// SetPrice stages the price inputs used by the products collection.
// Ignored while uploading.
func (c *Controller) SetPrice(price *int, taxIncluded *bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress != ProgressIdle {
		return
	}
	c.price = price
	c.taxIncluded = taxIncluded
}

// SetKeywords stages the AI-assist keyword inputs. Ignored while uploading.
func (c *Controller) SetKeywords(keywords []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress != ProgressIdle {
		return
	}
	c.keywords = keywords
}

// SetFile stages the chosen media file. Ignored while uploading.
func (c *Controller) SetFile(f *upload.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress != ProgressIdle {
		return
	}
	c.file = f
}

// Editing returns the item being edited, if any.
func (c *Controller) Editing() *models.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// Save runs the full save operation: validate, upload staged media if any,
// then write the document (create on add, merge-update on edit). On success
// the form closes and all transient fields reset. On any failure the form
// stays open, progress resets to idle, and the error is returned for the
// handler to map to a generic alert.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.progress != ProgressIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.mode == ModeClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if strings.TrimSpace(c.title) == "" {
		c.mu.Unlock()
		return ErrTitleRequired
	}
	if c.mode == ModeAdd && c.file == nil {
		c.mu.Unlock()
		return ErrFileRequired
	}

	// Snapshot everything the save needs, then mark the upload active so
	// every other mutating action refuses until we finish.
	mode := c.mode
	editing := c.editing
	title, body := c.title, c.body
	price, taxIncluded := c.price, c.taxIncluded
	file := c.file
	if file != nil {
		c.progress = 0
	}
	c.mu.Unlock()

	id := uuid.New()
	var mediaURL string
	mediaType := models.MediaImage
	var originalFileName string
	if editing != nil {
		id = editing.ID
		mediaURL = editing.MediaURL
		mediaType = editing.MediaType
		originalFileName = editing.OriginalFileName
	}

	if file != nil {
		if c.uploader == nil {
			c.finishUpload()
			return fmt.Errorf("save item: object storage is not configured")
		}
		result, err := c.uploader.Save(ctx, c.collection, id, *file, editing, c.setProgress)
		if err != nil {
			c.finishUpload()
			return err
		}
		mediaURL = result.MediaURL
		mediaType = result.MediaType
		originalFileName = file.Name
	}

	payload := models.ItemPayload{
		Title:            title,
		Body:             body,
		MediaURL:         mediaURL,
		MediaType:        mediaType,
		OriginalFileName: originalFileName,
		Price:            price,
		TaxIncluded:      taxIncluded,
	}

	var err error
	if mode == ModeEdit {
		err = c.docs.Update(ctx, c.collection, c.siteID, id, payload)
	} else {
		err = c.docs.Create(ctx, c.collection, c.siteID, id, payload)
	}
	if err != nil {
		c.finishUpload()
		return err
	}

	c.mu.Lock()
	c.resetLocked()
	c.mode = ModeClosed
	c.progress = ProgressIdle
	c.mu.Unlock()
	return nil
}

// GenerateIntro calls the text generator with the staged title and
// keywords and, on success, fills the body field and clears the keywords.
// It carries its own busy state and never participates in the save
// transaction.
func (c *Controller) GenerateIntro(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.gen == nil {
		c.mu.Unlock()
		return "", fmt.Errorf("no text generator configured")
	}
	if c.aiBusy {
		c.mu.Unlock()
		return "", ErrBusy
	}
	title := strings.TrimSpace(c.title)
	var keywords []string
	for _, k := range c.keywords {
		if strings.TrimSpace(k) != "" {
			keywords = append(keywords, strings.TrimSpace(k))
		}
	}
	if title == "" || len(keywords) == 0 {
		c.mu.Unlock()
		return "", ErrKeywordsRequired
	}
	c.aiBusy = true
	c.mu.Unlock()

	text, err := c.gen.IntroText(ctx, title, keywords)

	c.mu.Lock()
	c.aiBusy = false
	if err == nil {
		c.body = text
		c.keywords = nil
	}
	c.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("generate intro: %w", err)
	}
	return text, nil
}

// Body returns the staged body text (handlers echo it back after AI assist).
func (c *Controller) Body() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.body
}

func (c *Controller) setProgress(pct int) {
	c.mu.Lock()
	c.progress = pct
	c.mu.Unlock()
}

func (c *Controller) finishUpload() {
	c.mu.Lock()
	c.progress = ProgressIdle
	c.mu.Unlock()
}

// resetLocked clears all transient fields. Callers hold the mutex.
func (c *Controller) resetLocked() {
	c.editing = nil
	c.title = ""
	c.body = ""
	c.price = nil
	c.taxIncluded = nil
	c.file = nil
	c.keywords = nil
}
