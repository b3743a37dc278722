package ws

// Event types pushed to members
const (
	// EventConversationUpdated tells a member to re-poll a conversation. It never carries content.
	EventConversationUpdated = "conversation.updated"
	// EventNotification announces a new inbox notification. Like hints it carries ids, not content.
	EventNotification = "notification"
)

// Event represents a real-time event sent via WebSocket
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ConversationUpdated is the payload of EventConversationUpdated
type ConversationUpdated struct {
	ConversationID uint64 `json:"conversation_id"`
}

// NotificationPayload is the payload of EventNotification
type NotificationPayload struct {
	ConversationID uint64 `json:"conversation_id"`
	MessageID      uint64 `json:"message_id"`
	URL            string `json:"url"`
}
