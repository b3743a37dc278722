package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/damoang/angple-messenger/internal/domain"
	"github.com/damoang/angple-messenger/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	got   []Notification
	err   error
	block chan struct{}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(ctx context.Context, n Notification) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type panicSink struct{}

func (panicSink) Name() string                                { return "panic" }
func (panicSink) Deliver(context.Context, Notification) error { panic("boom") }

func TestDispatcher_DeliversToEverySink(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("smtp down")}
	d := NewDispatcher(Config{Workers: 2, QueueSize: 8, Timeout: time.Second}, a, panicSink{}, b)

	for i := 0; i < 5; i++ {
		assert.True(t, d.Dispatch(Notification{RecipientID: "bob", MessageID: uint64(i)}))
	}
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 5, a.count())
	assert.Equal(t, 5, b.count(), "a failing or panicking sink does not stop the others")
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(Config{Workers: 1, QueueSize: 1, Timeout: time.Second}, sink)

	accepted := 0
	start := time.Now()
	for i := 0; i < 10; i++ {
		if d.Dispatch(Notification{RecipientID: "bob"}) {
			accepted++
		}
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.LessOrEqual(t, accepted, 2, "one in flight plus one queued")

	close(sink.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, accepted, sink.count())
}

func TestDispatcher_DispatchAfterClose(t *testing.T) {
	d := NewDispatcher(Config{Workers: 1, QueueSize: 1})
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.False(t, d.Dispatch(Notification{RecipientID: "bob"}))
}

func TestDispatcher_CloseHonorsContext(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(Config{Workers: 1, QueueSize: 1, Timeout: time.Minute}, sink)
	d.Dispatch(Notification{RecipientID: "bob"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(sink.block)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) SendToMember(memberID string, event *ws.Event) {
	m.Called(memberID, event)
}

func TestInboxSink(t *testing.T) {
	store := new(mockStore)
	store.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.MemberID == "bob" &&
			n.Type == domain.NotificationTypeMessage &&
			n.Title == "New message from Alice" &&
			n.URL == "https://angple.com/messages/3" &&
			n.Content == "hello"
	})).Return(nil)

	sink := NewInboxSink(store)
	err := sink.Deliver(context.Background(), Notification{
		RecipientID:    "bob",
		SenderID:       "alice",
		SenderName:     "Alice",
		Snippet:        "hello",
		DeepLink:       "https://angple.com/messages/3",
		ConversationID: 3,
		MessageID:      11,
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestPushSink(t *testing.T) {
	pusher := new(mockPusher)
	var sent *ws.Event
	pusher.On("SendToMember", "bob", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*ws.Event)
	}).Return()

	sink := NewPushSink(pusher)
	require.NoError(t, sink.Deliver(context.Background(), Notification{
		RecipientID:    "bob",
		SenderID:       "alice",
		SenderName:     "Alice",
		Snippet:        "the offer is 90k",
		DeepLink:       "https://angple.com/messages/3",
		ConversationID: 3,
		MessageID:      11,
	}))
	pusher.AssertExpectations(t)

	require.NotNil(t, sent)
	assert.Equal(t, ws.EventNotification, sent.Type)
	assert.Equal(t, ws.NotificationPayload{ConversationID: 3, MessageID: 11, URL: "https://angple.com/messages/3"}, sent.Payload)

	raw, err := json.Marshal(sent)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "90k")
	assert.NotContains(t, string(raw), "Alice")
}

type fakeDirectory map[string]*domain.Member

func (d fakeDirectory) FindMember(_ context.Context, id string) (*domain.Member, error) {
	if m, ok := d[id]; ok {
		return m, nil
	}
	return nil, errors.New("member not found")
}

func TestDispatcher_ResolvesMembersInWorker(t *testing.T) {
	directory := fakeDirectory{
		"alice": {ID: "alice", Nickname: "Alice"},
		"bob":   {ID: "bob", Email: "bob@example.com", NotifyMessages: true},
		"carol": {ID: "carol", NotifyMessages: false},
		"dave":  {ID: "dave", NotifyMessages: true},
	}
	sink := &recordingSink{}
	d := NewDispatcher(Config{Workers: 1, QueueSize: 8, Directory: directory}, sink)

	assert.True(t, d.Dispatch(Notification{RecipientID: "bob", SenderID: "alice", MessageID: 1}))
	assert.True(t, d.Dispatch(Notification{RecipientID: "bob", SenderID: "ghost", MessageID: 2}))
	assert.True(t, d.Dispatch(Notification{RecipientID: "carol", SenderID: "alice", MessageID: 3}))
	assert.True(t, d.Dispatch(Notification{RecipientID: "dave", SenderID: "alice", MessageID: 4}))
	assert.True(t, d.Dispatch(Notification{RecipientID: "ghost", SenderID: "alice", MessageID: 5}))
	require.NoError(t, d.Close(context.Background()))

	require.Equal(t, 2, sink.count(), "opted out, unreachable and unknown recipients are skipped")
	assert.Equal(t, uint64(1), sink.got[0].MessageID)
	assert.Equal(t, "Alice", sink.got[0].SenderName)
	assert.Equal(t, uint64(2), sink.got[1].MessageID)
	assert.Equal(t, "ghost", sink.got[1].SenderName, "unknown sender falls back to the id")
}
