// notifier_test.go contains an integration test for the pub/sub change
// notification round trip. Skipped when Valkey is unavailable.
package live

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNotifierRoundTrip(t *testing.T) {
	client := testClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, channelName("staffs", "test-site"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	NewNotifier(client).NotifyChanged(ctx, "staffs", "test-site")

	select {
	case msg := <-sub.Channel():
		if msg.Channel != "items:staffs:test-site" {
			t.Errorf("channel = %q", msg.Channel)
		}
	case <-ctx.Done():
		t.Fatal("no notification received before timeout")
	}
}

func TestChannelName(t *testing.T) {
	if got := channelName("news", "studio-eight"); got != "items:news:studio-eight" {
		t.Errorf("channelName = %q", got)
	}
}
