// Package notifications provides real-time delivery of the admin
// notification feed over Redis pub/sub and WebSockets.
package notifications

import (
	"context"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// AdminChannel is the Redis channel carrying admin feed events.
const AdminChannel = "notifications:admin"

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishAdmin sends a notification payload to the admin channel.
// A nil Redis client is a no-op so the workflow never depends on pub/sub.
func (n *Notifier) PublishAdmin(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, AdminChannel, payload).Err()
}

// StartAdminSubscriber subscribes to the admin channel and calls onMessage
// for each incoming payload until ctx is cancelled.
func (n *Notifier) StartAdminSubscriber(
	ctx context.Context, onMessage func(payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, AdminChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in AdminSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
