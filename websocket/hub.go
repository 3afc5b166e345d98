package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notify:"

// Message is the envelope pushed to connected clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type ClientMessage struct {
	Action string `json:"action"`
}

// Hub tracks live connections per user. With a Redis client, notifications
// go through pub/sub so every instance delivers to its own connections.
type Hub struct {
	userConns  map[int64]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	redis      *redis.Client
	logger     *slog.Logger
	mu         sync.RWMutex
}

func NewHub(redisClient *redis.Client, logger *slog.Logger) *Hub {
	return &Hub{
		userConns:  make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		redis:      redisClient,
		logger:     logger.With("component", "hub"),
	}
}

// Start subscribes to Redis, when configured, and launches the hub loop.
// The subscription is confirmed before Start returns.
func (h *Hub) Start(ctx context.Context) error {
	if h.redis != nil {
		pubsub := h.redis.PSubscribe(ctx, channelPrefix+"*")
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return err
		}
		go h.relay(ctx, pubsub)
	}

	go h.run(ctx)
	return nil
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.userConns[client.UserID]; ok && conns[client] {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.userConns, client.UserID)
				}
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// Register adds client to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.userConns {
		for client := range conns {
			close(client.Send)
		}
		delete(h.userConns, userID)
	}
}

func (h *Hub) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, ok := userIDFromChannel(msg.Channel)
			if !ok {
				continue
			}
			h.deliver(userID, []byte(msg.Payload))
		}
	}
}

// Notify sends an event to every connection of userID. Delivery is best
// effort; slow clients drop messages. Without Redis, users with no local
// connection are skipped before encoding.
func (h *Hub) Notify(ctx context.Context, userID int64, event string, data any) {
	if h.redis == nil && !h.IsOnline(userID) {
		return
	}

	payload, err := json.Marshal(&Message{Event: event, Data: data})
	if err != nil {
		h.logger.Error("encode notification", "event", event, "error", err)
		return
	}

	if h.redis != nil {
		if err := h.redis.Publish(ctx, redisChannel(userID), payload).Err(); err != nil {
			h.logger.Error("redis publish", "user_id", userID, "error", err)
		}
		return
	}
	h.deliver(userID, payload)
}

func (h *Hub) deliver(userID int64, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.userConns[userID] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Debug("dropping notification for slow client", "user_id", userID, "client_id", client.ID)
		}
	}
}

// reply writes to a single client while it is still registered.
func (h *Hub) reply(client *Client, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.userConns[client.UserID][client] {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}

func redisChannel(userID int64) string {
	return channelPrefix + strconv.FormatInt(userID, 10)
}

func userIDFromChannel(channel string) (int64, bool) {
	raw, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	return userID, err == nil
}
