package ws

import (
	"context"
	"encoding/json"
	"sync"

	pkglogger "github.com/damoang/angple-messenger/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisPubSubChannel = "dm:events"

// Hub manages WebSocket clients and fans events out to members.
// With Redis, events are relayed to the hubs of other instances.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent

	mu          sync.RWMutex
	redisClient *redis.Client
	instanceID  string
	log         zerolog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

type targetedEvent struct {
	MemberID string
	Event    *Event
}

type redisMessage struct {
	Origin   string `json:"origin"`
	MemberID string `json:"member_id"`
	Event    *Event `json:"event"`
}

// NewHub creates a new Hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		redisClient: redisClient,
		instanceID:  uuid.NewString(),
		log:         pkglogger.WithComponent("ws"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.memberID] == nil {
				h.clients[client.memberID] = make(map[*Client]bool)
			}
			h.clients[client.memberID][client] = true
			connectedMembers.Set(float64(len(h.clients)))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			connectedMembers.Set(float64(len(h.clients)))
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) deliver(msg *targetedEvent) {
	data, err := json.Marshal(msg.Event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[msg.MemberID] {
		select {
		case client.send <- data:
		default:
			// slow consumer
			eventsDropped.WithLabelValues("slow_client").Inc()
			h.remove(client)
		}
	}
	connectedMembers.Set(float64(len(h.clients)))
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.memberID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.memberID)
	}
}

// SendToMember queues an event for a member (local + Redis publish).
// It never blocks; events are dropped when the hub is saturated.
func (h *Hub) SendToMember(memberID string, event *Event) {
	select {
	case h.broadcast <- &targetedEvent{MemberID: memberID, Event: event}:
	default:
		eventsDropped.WithLabelValues("hub_saturated").Inc()
		h.log.Warn().Str("member_id", memberID).Str("type", event.Type).Msg("hub saturated, event dropped")
	}

	if h.redisClient != nil {
		data, err := json.Marshal(&redisMessage{Origin: h.instanceID, MemberID: memberID, Event: event})
		if err == nil {
			h.redisClient.Publish(h.ctx, redisPubSubChannel, data) //nolint:errcheck
		}
	}
}

// ConversationUpdated hints a member that a conversation changed
func (h *Hub) ConversationUpdated(memberID string, conversationID uint64) {
	h.SendToMember(memberID, &Event{
		Type:    EventConversationUpdated,
		Payload: ConversationUpdated{ConversationID: conversationID},
	})
}

// ConnectedMembers returns the number of members with at least one open socket
func (h *Hub) ConnectedMembers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// subscribeRedis relays events published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm redisMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil || rm.Origin == h.instanceID {
				continue
			}
			select {
			case h.broadcast <- &targetedEvent{MemberID: rm.MemberID, Event: rm.Event}:
			case <-h.ctx.Done():
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
