package live

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes collection-change notifications over Valkey pub/sub.
// It implements store.ChangeNotifier. Publishing is best-effort: a lost
// notification only delays convergence until the next one, so failures are
// logged and swallowed.
type Notifier struct {
	client *redis.Client
}

// NewNotifier creates a Notifier backed by the given Valkey client.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// NotifyChanged broadcasts that a collection changed.
func (n *Notifier) NotifyChanged(ctx context.Context, collection, siteID string) {
	if err := n.client.Publish(ctx, channelName(collection, siteID), "changed").Err(); err != nil {
		slog.Warn("change notification publish failed",
			"collection", collection, "site", siteID, "error", err)
	}
}

// channelName returns the pub/sub channel for one collection of one site.
func channelName(collection, siteID string) string {
	return "items:" + collection + ":" + siteID
}
