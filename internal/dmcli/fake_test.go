package dmcli

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/damoang/angple-messenger/pkg/syncclient"
	"github.com/spf13/cobra"
)

// fakeAPI is an in-memory messaging server for one caller ("alice")
type fakeAPI struct {
	mu        sync.Mutex
	messages  []syncclient.Message
	inbox     []syncclient.Conversation
	users     map[string]syncclient.UserSummary
	sent      []syncclient.SendRequest
	reactions map[uint64][]syncclient.Reaction
	unsent    []uint64
	nextID    uint64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users: map[string]syncclient.UserSummary{
			"bob": {ID: "bob", DisplayName: "Bob", RoleLabel: "member"},
		},
		reactions: make(map[uint64][]syncclient.Reaction),
		nextID:    100,
	}
}

func (f *fakeAPI) add(sender, content string) syncclient.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	direction := "theirs"
	if sender == "alice" {
		direction = "mine"
	}
	m := syncclient.Message{
		ID:             f.nextID,
		ConversationID: 7,
		SenderID:       sender,
		Direction:      direction,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	f.messages = append(f.messages, m)
	return m
}

func (f *fakeAPI) ListConversations(context.Context) ([]syncclient.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]syncclient.Conversation(nil), f.inbox...), nil
}

func (f *fakeAPI) StartConversation(_ context.Context, target string) (uint64, error) {
	if _, ok := f.users[target]; !ok {
		return 0, &syncclient.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND"}
	}
	return 7, nil
}

func (f *fakeAPI) OpenConversation(_ context.Context, id uint64) (*syncclient.ConversationDetail, error) {
	if id != 7 {
		return nil, &syncclient.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &syncclient.ConversationDetail{
		ConversationID:   7,
		OtherParticipant: f.users["bob"],
		Messages:         append([]syncclient.Message(nil), f.messages...),
	}, nil
}

func (f *fakeAPI) Send(_ context.Context, req syncclient.SendRequest) (*syncclient.SendResult, error) {
	f.mu.Lock()
	f.sent = append(f.sent, req)
	f.mu.Unlock()
	m := f.add("alice", req.Content)
	return &syncclient.SendResult{ConversationID: 7, Message: m}, nil
}

func (f *fakeAPI) React(_ context.Context, messageID uint64, emoji string) (*syncclient.ReactionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.reactions[messageID]
	if len(current) == 1 && current[0].Emoji == emoji {
		delete(f.reactions, messageID)
	} else {
		f.reactions[messageID] = []syncclient.Reaction{{Emoji: emoji, Count: 1, Mine: true, UserIDs: []string{"alice"}}}
	}
	return &syncclient.ReactionResult{MessageID: messageID, Reactions: f.reactions[messageID]}, nil
}

func (f *fakeAPI) Unsend(_ context.Context, messageID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsent = append(f.unsent, messageID)
	return nil
}

func (f *fakeAPI) UserSummary(_ context.Context, userID string) (*syncclient.UserSummary, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, &syncclient.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND"}
	}
	return &u, nil
}

// syncBuffer lets the watch loops write while the test reads
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestCommand(api syncclient.API, args ...string) (*cobra.Command, *syncBuffer) {
	cmd := newRootCommand(&RootOptions{
		newAPI: func(string, string) syncclient.API { return api },
	})
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--token", "test-token"}, args...))
	return cmd, out
}
