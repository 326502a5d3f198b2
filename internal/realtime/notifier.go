package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"astraxis-server/internal/economy"
	"astraxis-server/internal/queue"
	sharedredis "astraxis-server/internal/shared/redis"
)

const (
	eventResourcesUpdate = "resources:update"
	eventQueueUpdate     = "queue:update"
	eventQueueFinished   = "queue:finished"

	playerChannelPrefix = "realtime:player:"
	publishTimeout      = 3 * time.Second
)

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Notifier fans game events out to a player's sessions. With Redis connected
// it publishes to the player's channel and the bridge delivers on whichever
// instance holds the session; without Redis it delivers straight to the local
// hub.
type Notifier struct {
	hub    *Hub
	redis  *sharedredis.Client
	logger *slog.Logger
}

func NewNotifier(hub *Hub, redisClient *sharedredis.Client, logger *slog.Logger) *Notifier {
	return &Notifier{
		hub:    hub,
		redis:  redisClient,
		logger: logger,
	}
}

func (n *Notifier) ResourcesUpdate(playerID, planetID int, resources economy.Resources, at time.Time) {
	n.publish(playerID, eventResourcesUpdate, map[string]any{
		"planet_id": planetID,
		"resources": resources,
		"at":        at,
	})
}

func (n *Notifier) QueueUpdate(playerID int, items []queue.Item) {
	n.publish(playerID, eventQueueUpdate, map[string]any{
		"items": items,
	})
}

func (n *Notifier) QueueFinished(playerID int, item *queue.Item) {
	n.publish(playerID, eventQueueFinished, map[string]any{
		"item": item,
	})
}

// publish is best effort. Failures are logged and dropped; the triggering
// action already committed and must not fail over a push.
func (n *Notifier) publish(playerID int, event string, data any) {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		n.logger.Error("Failed to marshal realtime event", "error", err, "event", event)
		return
	}

	if n.redis == nil {
		n.hub.Deliver(playerID, payload)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := n.redis.Publish(ctx, playerChannel(playerID), payload).Err(); err != nil {
		n.logger.Error("Failed to publish realtime event", "error", err, "event", event, "player_id", playerID)
		// Local sessions still get the event even when Redis is unhealthy.
		n.hub.Deliver(playerID, payload)
	}
}

func playerChannel(playerID int) string {
	return fmt.Sprintf("%s%d", playerChannelPrefix, playerID)
}

// RunBridge subscribes to all player channels and delivers published events to
// local sessions. Blocks until ctx is cancelled. A nil Redis client means
// events never leave the process and there is nothing to bridge.
func RunBridge(ctx context.Context, redisClient *sharedredis.Client, hub *Hub, logger *slog.Logger) {
	if redisClient == nil {
		return
	}

	pubsub := redisClient.PSubscribe(ctx, playerChannelPrefix+"*")
	defer pubsub.Close()

	logger.Info("Realtime bridge subscribed", "pattern", playerChannelPrefix+"*")

	channel := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-channel:
			if !ok {
				return
			}
			playerID, err := playerIDFromChannel(msg.Channel)
			if err != nil {
				logger.Warn("Ignoring message on malformed channel", "channel", msg.Channel)
				continue
			}
			hub.Deliver(playerID, []byte(msg.Payload))
		}
	}
}

func playerIDFromChannel(channel string) (int, error) {
	suffix, ok := strings.CutPrefix(channel, playerChannelPrefix)
	if !ok {
		return 0, fmt.Errorf("channel %q lacks player prefix", channel)
	}
	return strconv.Atoi(suffix)
}
