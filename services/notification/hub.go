package notification

import (
	"context"
	"strings"
	"sync"

	"slotbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one socket connection of a user.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient wraps conn with a buffered outbound queue.
func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn, Send: make(chan []byte, 256)}
}

// Hub keeps the socket connections of this instance. With Redis configured,
// Publish goes through the notify:<userId> channels so that every instance
// delivers to the sockets it holds.
type Hub struct {
	connections map[string]map[*Client]bool
	mu          sync.RWMutex

	redis  *redis.Client
	pubsub *redis.PubSub
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. redisClient may be nil for single-instance delivery.
func NewHub(redisClient *redis.Client, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		connections: make(map[string]map[*Client]bool),
		redis:       redisClient,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(ctx, utils.NotifyChannelPrefix+"*")
	}
	return h
}

// Run consumes the Redis subscription until Shutdown. Call in a goroutine.
func (h *Hub) Run() {
	if h.pubsub == nil {
		return
	}
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID := strings.TrimPrefix(msg.Channel, utils.NotifyChannelPrefix)
			if userID == "" || userID == msg.Channel {
				continue
			}
			h.deliverLocal(userID, []byte(msg.Payload))
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c.UserID] == nil {
		h.connections[c.UserID] = make(map[*Client]bool)
	}
	h.connections[c.UserID][c] = true
	h.logger.Debug("socket connected", zap.String("userId", c.UserID))
}

// Unregister removes a connection and closes its queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.connections[c.UserID]
	if !ok {
		return
	}
	if _, exists := conns[c]; exists {
		delete(conns, c)
		close(c.Send)
	}
	if len(conns) == 0 {
		delete(h.connections, c.UserID)
	}
	h.logger.Debug("socket disconnected", zap.String("userId", c.UserID))
}

// Publish implements Publisher.
func (h *Hub) Publish(ctx context.Context, channelKey string, payload []byte) error {
	if h.redis == nil {
		h.deliverLocal(channelKey, payload)
		return nil
	}
	if err := h.redis.Publish(ctx, utils.NotifyChannelPrefix+channelKey, payload).Err(); err != nil {
		// Other instances miss this one, but local sockets still get it.
		h.deliverLocal(channelKey, payload)
		return err
	}
	return nil
}

func (h *Hub) deliverLocal(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections[userID] {
		select {
		case c.Send <- payload:
		default:
			h.logger.Warn("socket send buffer full", zap.String("userId", userID))
		}
	}
}

// ConnectionCount returns the number of local connections of userID.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Shutdown stops the subscriber.
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
}
