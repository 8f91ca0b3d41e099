// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// item_test.go contains integration tests for the item document store.
// Tests exercise a real PostgreSQL connection and are skipped when the
// database is unavailable.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"salonpress/internal/database"
	"salonpress/internal/models"
)

const testSiteID = "test-site"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "salonpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "salonpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() {
		db.Exec("DELETE FROM items WHERE site_id = $1", testSiteID)
		db.Close()
	})
	return db
}

// countingNotifier counts change broadcasts.
type countingNotifier struct {
	n atomic.Int64
}

func (c *countingNotifier) NotifyChanged(ctx context.Context, collection, siteID string) {
	c.n.Add(1)
}

func TestItemStoreCreateAndList(t *testing.T) {
	db := testDB(t)
	notifier := &countingNotifier{}
	items := NewItemStore(db, notifier)
	ctx := context.Background()

	id := uuid.New()
	payload := models.ItemPayload{
		Title:     "山田 花子",
		Body:      "スタイリスト歴10年。",
		MediaURL:  "https://cdn.example.com/staffs/public/test-site/x.jpg",
		MediaType: models.MediaImage,
	}
	if err := items.Create(ctx, "staffs", testSiteID, id, payload); err != nil {
		t.Fatalf("create: %v", err)
	}
	if notifier.n.Load() != 1 {
		t.Errorf("notifications after create = %d, want 1", notifier.n.Load())
	}

	docs, err := items.ListDocs(ctx, "staffs", testSiteID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if docs[0].ID != id {
		t.Errorf("doc id = %s, want %s", docs[0].ID, id)
	}
	if docs[0].CreatedAt.IsZero() {
		t.Error("created_at was not assigned by the server")
	}

	item, err := models.DecodeItem(docs[0].ID, docs[0].CreatedAt, docs[0].Doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.Title != payload.Title {
		t.Errorf("title = %q, want %q", item.Title, payload.Title)
	}
}

// TestItemStoreUpdatePreservesOrder checks the merge semantics: an edit
// never carries an order key, so the position written by a previous
// reorder must survive the update.
func TestItemStoreUpdatePreservesOrder(t *testing.T) {
	db := testDB(t)
	items := NewItemStore(db, nil)
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	for _, id := range []uuid.UUID{a, b} {
		if err := items.Create(ctx, "products", testSiteID, id, models.ItemPayload{Title: "cut"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := items.SetOrder(ctx, "products", testSiteID, []uuid.UUID{b, a}); err != nil {
		t.Fatalf("set order: %v", err)
	}

	price := 5500
	if err := items.Update(ctx, "products", testSiteID, a, models.ItemPayload{Title: "カット", Price: &price}); err != nil {
		t.Fatalf("update: %v", err)
	}

	docs, err := items.ListDocs(ctx, "products", testSiteID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, d := range docs {
		if d.ID != a {
			continue
		}
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(d.Doc, &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if string(doc["order"]) != "1" {
			t.Errorf("order after update = %s, want 1", doc["order"])
		}
		if string(doc["price"]) != "5500" {
			t.Errorf("price after update = %s, want 5500", doc["price"])
		}
		return
	}
	t.Fatal("updated document not found")
}

func TestItemStoreUpdateMissing(t *testing.T) {
	db := testDB(t)
	items := NewItemStore(db, nil)

	err := items.Update(context.Background(), "news", testSiteID, uuid.New(), models.ItemPayload{Title: "x"})
	if err == nil {
		t.Fatal("expected error updating nonexistent document")
	}
}

func TestItemStoreSetOrder(t *testing.T) {
	db := testDB(t)
	items := NewItemStore(db, nil)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		if err := items.Create(ctx, "news", testSiteID, id, models.ItemPayload{Title: "post"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Reverse order and persist.
	want := []uuid.UUID{ids[2], ids[1], ids[0]}
	if err := items.SetOrder(ctx, "news", testSiteID, want); err != nil {
		t.Fatalf("set order: %v", err)
	}

	docs, err := items.ListDocs(ctx, "news", testSiteID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	order := make(map[uuid.UUID]int)
	for _, d := range docs {
		item, err := models.DecodeItem(d.ID, d.CreatedAt, d.Doc)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		order[d.ID] = item.Order
	}
	for i, id := range want {
		if order[id] != i {
			t.Errorf("order[%s] = %d, want %d", id, order[id], i)
		}
	}
}

func TestItemStoreDelete(t *testing.T) {
	db := testDB(t)
	items := NewItemStore(db, nil)
	ctx := context.Background()

	id := uuid.New()
	if err := items.Create(ctx, "staffs", testSiteID, id, models.ItemPayload{Title: "temp"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := items.Delete(ctx, "staffs", testSiteID, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := items.Delete(ctx, "staffs", testSiteID, id); err == nil {
		t.Fatal("expected error deleting twice")
	}
}

func TestUserStoreCreateAndAuthenticate(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	email := "store-test-" + uuid.NewString() + "@example.com"
	user, err := users.Create(email, "s3cret-password", "Store Test")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { users.Delete(user.ID) })

	found, err := users.FindByEmail(email)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil {
		t.Fatal("created user not found")
	}
	if !users.CheckPassword(found, "s3cret-password") {
		t.Error("correct password rejected")
	}
	if users.CheckPassword(found, "wrong") {
		t.Error("wrong password accepted")
	}

	if err := users.SetTOTPSecret(user.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("set totp secret: %v", err)
	}
	if err := users.EnableTOTP(user.ID); err != nil {
		t.Fatalf("enable totp: %v", err)
	}
	found, err = users.FindByID(user.ID)
	if err != nil || found == nil {
		t.Fatalf("find by id: %v", err)
	}
	if !found.TOTPEnabled {
		t.Error("totp not enabled after EnableTOTP")
	}
}
