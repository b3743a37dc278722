package notify

import (
	"context"

	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/ws"
)

// NotificationStore persists inbox rows
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// InboxSink writes the notification to the member's notification inbox.
// The row keeps the message id so an unsent message is redacted on read.
type InboxSink struct {
	store NotificationStore
}

// NewInboxSink creates an InboxSink
func NewInboxSink(store NotificationStore) *InboxSink {
	return &InboxSink{store: store}
}

func (s *InboxSink) Name() string { return "inbox" }

func (s *InboxSink) Deliver(ctx context.Context, n Notification) error {
	return s.store.Create(ctx, &domain.Notification{
		MemberID:   n.RecipientID,
		Type:       domain.NotificationTypeMessage,
		Title:      "New message from " + n.SenderName,
		Content:    n.Snippet,
		URL:        n.DeepLink,
		SenderID:   n.SenderID,
		SenderName: n.SenderName,
		MessageID:  n.MessageID,
	})
}

// Pusher sends an event to a member's open sockets
type Pusher interface {
	SendToMember(memberID string, event *ws.Event)
}

// PushSink pushes the notification to connected clients of the recipient.
// The event carries ids only; clients fetch content over the API.
type PushSink struct {
	pusher Pusher
}

// NewPushSink creates a PushSink
func NewPushSink(pusher Pusher) *PushSink {
	return &PushSink{pusher: pusher}
}

func (s *PushSink) Name() string { return "push" }

func (s *PushSink) Deliver(_ context.Context, n Notification) error {
	s.pusher.SendToMember(n.RecipientID, &ws.Event{
		Type: ws.EventNotification,
		Payload: ws.NotificationPayload{
			ConversationID: n.ConversationID,
			MessageID:      n.MessageID,
			URL:            n.DeepLink,
		},
	})
	return nil
}
