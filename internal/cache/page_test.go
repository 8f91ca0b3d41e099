// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page_test.go contains integration tests for the Valkey-backed page cache.
// Tests are skipped when Valkey is unavailable.
package cache

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testClient returns a Valkey client on DB 15 or skips the test.
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, pageKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestPageCacheSetGet(t *testing.T) {
	pc := NewPageCache(testClient(t), time.Minute)
	ctx := context.Background()

	html := []byte("<html><body>staffs</body></html>")
	pc.Set(ctx, "staffs", html)

	got, ok := pc.Get(ctx, "staffs")
	if !ok {
		t.Fatal("cache miss after set")
	}
	if !bytes.Equal(got, html) {
		t.Errorf("got %q, want %q", got, html)
	}
}

func TestPageCacheMiss(t *testing.T) {
	pc := NewPageCache(testClient(t), time.Minute)

	if _, ok := pc.Get(context.Background(), "never-cached"); ok {
		t.Error("unexpected cache hit")
	}
}

func TestInvalidateCollection(t *testing.T) {
	pc := NewPageCache(testClient(t), time.Minute)
	ctx := context.Background()

	pc.Set(ctx, "staffs", []byte("staffs page"))
	pc.InvalidateCollection(ctx, "staffs")
	if _, ok := pc.Get(ctx, "staffs"); ok {
		t.Error("staffs page still cached after invalidation")
	}
}

// TestInvalidateNewsClearsHomepage checks the homepage coupling: the home
// page previews recent news, so news mutations must clear both.
func TestInvalidateNewsClearsHomepage(t *testing.T) {
	pc := NewPageCache(testClient(t), time.Minute)
	ctx := context.Background()

	pc.Set(ctx, "news", []byte("news page"))
	pc.Set(ctx, HomepageKey(), []byte("home page"))

	pc.InvalidateCollection(ctx, "news")

	if _, ok := pc.Get(ctx, "news"); ok {
		t.Error("news page still cached")
	}
	if _, ok := pc.Get(ctx, HomepageKey()); ok {
		t.Error("homepage still cached after news invalidation")
	}
}

func TestInvalidateAll(t *testing.T) {
	pc := NewPageCache(testClient(t), time.Minute)
	ctx := context.Background()

	for _, key := range []string{"staffs", "products", "news", HomepageKey()} {
		pc.Set(ctx, key, []byte("page"))
	}
	pc.InvalidateAll(ctx)
	for _, key := range []string{"staffs", "products", "news", HomepageKey()} {
		if _, ok := pc.Get(ctx, key); ok {
			t.Errorf("%q still cached after InvalidateAll", key)
		}
	}
}
