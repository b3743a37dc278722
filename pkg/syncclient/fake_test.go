package syncclient

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeAPI is an in-memory server holding a single conversation
type fakeAPI struct {
	mu       sync.Mutex
	messages []Message
	inbox    []Conversation
	nextID   uint64
	sendErr  error
	openErr  error
	opens    int
	lists    int
	reacts   int
	onOpen   func(call int)
	onList   func(call int)

	// per-call failures, consulted after the hooks return
	openErrFor func(call int) error
	listErrFor func(call int) error
}

func (f *fakeAPI) addMessage(content string) Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := Message{ID: f.nextID, ConversationID: 1, Content: content, Direction: "theirs", CreatedAt: time.Now()}
	f.messages = append(f.messages, m)
	return m
}

func (f *fakeAPI) openCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *fakeAPI) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeAPI) ListConversations(context.Context) ([]Conversation, error) {
	f.mu.Lock()
	f.lists++
	n := f.lists
	items := append([]Conversation(nil), f.inbox...)
	hook := f.onList
	errFor := f.listErrFor
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if errFor != nil {
		if err := errFor(n); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (f *fakeAPI) StartConversation(context.Context, string) (uint64, error) {
	return 1, nil
}

func (f *fakeAPI) OpenConversation(_ context.Context, id uint64) (*ConversationDetail, error) {
	f.mu.Lock()
	f.opens++
	n := f.opens
	msgs := append([]Message(nil), f.messages...)
	hook := f.onOpen
	err := f.openErr
	errFor := f.openErrFor
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if err == nil && errFor != nil {
		err = errFor(n)
	}
	if err != nil {
		return nil, err
	}
	return &ConversationDetail{ConversationID: id, Messages: msgs, OtherParticipant: UserSummary{ID: "bob", DisplayName: "Bob"}}, nil
}

func (f *fakeAPI) Send(_ context.Context, req SendRequest) (*SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	m := Message{ID: f.nextID, ConversationID: req.ConversationID, Content: req.Content, Direction: "mine", CreatedAt: time.Now()}
	f.messages = append(f.messages, m)
	return &SendResult{ConversationID: req.ConversationID, Message: m}, nil
}

func (f *fakeAPI) React(_ context.Context, messageID uint64, emoji string) (*ReactionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reacts++
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			f.messages[i].Reactions = []Reaction{{Emoji: emoji, Count: 1, Mine: true, UserIDs: []string{"alice"}}}
			return &ReactionResult{MessageID: messageID, Reactions: f.messages[i].Reactions}, nil
		}
	}
	return nil, &APIError{Status: 404, Code: "NOT_FOUND"}
}

func (f *fakeAPI) Unsend(_ context.Context, messageID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			f.messages[i].IsDeleted = true
			f.messages[i].Content = "This message was unsent"
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeAPI) UserSummary(_ context.Context, userID string) (*UserSummary, error) {
	return &UserSummary{ID: userID, DisplayName: userID}, nil
}
