// Package notifications provides event publication for downstream delivery.
//
// The publication engine itself never publishes events; triggers (the sweeper
// job and the admin sweep endpoint) fan out from the transition list the
// engine returns.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event channels.
const (
	BroadcastChannel   = "events:broadcast"
	UserChannelPattern = "events:user:*"
)

// Event types published to Redis.
const (
	EventPostCreated   = "post.created"
	EventPostPublished = "post.published"
	EventUserFollowed  = "user.followed"
)

// Event is the payload published to Redis channels.
type Event struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Notifier provides helpers to publish events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func marshalEvent(eventType string, data map[string]interface{}) (string, error) {
	b, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, eventType string, data map[string]interface{}) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := marshalEvent(eventType, data)
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("events:user:%d", userID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// PublishBroadcast sends an event to all subscribers.
func (n *Notifier) PublishBroadcast(ctx context.Context, eventType string, data map[string]interface{}) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := marshalEvent(eventType, data)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// PublishPostPublished announces a scheduled post released by a sweep. The
// author channel gets a targeted event and the broadcast channel a public one.
func (n *Notifier) PublishPostPublished(ctx context.Context, postID, authorID uint, publishedAt time.Time) error {
	if n.rdb == nil {
		return nil
	}
	data := map[string]interface{}{
		"post_id":      postID,
		"author_id":    authorID,
		"published_at": publishedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := n.PublishUser(ctx, authorID, EventPostPublished, data); err != nil {
		return err
	}
	return n.PublishBroadcast(ctx, EventPostPublished, data)
}

// StartPatternSubscriber subscribes to per-user and broadcast channels and
// calls onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, UserChannelPattern, BroadcastChannel)
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
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
