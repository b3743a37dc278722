package syncclient

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbox_RefreshAndUnread(t *testing.T) {
	api := &fakeAPI{inbox: []Conversation{
		{ConversationID: 2, UnreadCount: 1, LastMessagePreview: "new"},
		{ConversationID: 1, UnreadCount: 0},
	}}
	inbox := NewInbox(api)
	assert.Equal(t, Idle, inbox.State())

	require.NoError(t, inbox.Refresh(context.Background()))
	assert.Equal(t, Loaded, inbox.State())
	assert.Len(t, inbox.Conversations(), 2)
	assert.Equal(t, 1, inbox.UnreadConversations())
}

func TestInbox_StaleResponseDiscarded(t *testing.T) {
	api := &fakeAPI{inbox: []Conversation{{ConversationID: 1}}}
	release := make(chan struct{})
	api.onList = func(call int) {
		if call == 1 {
			<-release
		}
	}
	inbox := NewInbox(api)

	slow := make(chan error, 1)
	go func() { slow <- inbox.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return api.listCalls() == 1 }, time.Second, time.Millisecond)

	api.mu.Lock()
	api.inbox = []Conversation{{ConversationID: 2}, {ConversationID: 1}}
	api.mu.Unlock()
	require.NoError(t, inbox.Refresh(context.Background()))

	close(release)
	require.NoError(t, <-slow)
	assert.Len(t, inbox.Conversations(), 2)
}

func TestInbox_SupersededFailureIsNotReported(t *testing.T) {
	api := &fakeAPI{inbox: []Conversation{{ConversationID: 1}}}
	release := make(chan struct{})
	api.onList = func(call int) {
		if call == 1 {
			<-release
		}
	}
	api.listErrFor = func(call int) error {
		if call == 1 {
			return errors.New("connection reset")
		}
		return nil
	}
	inbox := NewInbox(api)

	slow := make(chan error, 1)
	go func() { slow <- inbox.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return api.listCalls() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, inbox.Refresh(context.Background()))

	close(release)
	require.NoError(t, <-slow)
	assert.NoError(t, inbox.LastError())
	assert.Equal(t, Loaded, inbox.State())
	assert.Len(t, inbox.Conversations(), 1)
}

func TestPoller_RunsBothLoopsUntilCancelled(t *testing.T) {
	api := &fakeAPI{}
	poller := NewPoller(NewInbox(api), WithIntervals(5*time.Millisecond, 10*time.Millisecond))
	poller.Open(NewTimeline(api, 1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	require.Eventually(t, func() bool {
		return api.openCalls() >= 3 && api.listCalls() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPoller_NudgeRefreshesImmediately(t *testing.T) {
	api := &fakeAPI{}
	poller := NewPoller(NewInbox(api), WithIntervals(time.Hour, time.Hour))
	tl := NewTimeline(api, 7)
	poller.Open(tl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx) //nolint:errcheck

	// initial refresh of both loops
	require.Eventually(t, func() bool { return api.openCalls() >= 1 && api.listCalls() >= 1 }, time.Second, time.Millisecond)
	opens, lists := api.openCalls(), api.listCalls()

	poller.Nudge(99)
	require.Eventually(t, func() bool { return api.listCalls() > lists }, time.Second, time.Millisecond)
	assert.Equal(t, opens, api.openCalls(), "hint for another conversation must not reload the open timeline")

	poller.Nudge(7)
	require.Eventually(t, func() bool { return api.openCalls() > opens }, time.Second, time.Millisecond)
}

func TestPoller_ReportsErrorsAndKeepsPolling(t *testing.T) {
	api := &fakeAPI{openErr: assert.AnError}
	var failures atomic.Int32
	poller := NewPoller(NewInbox(api),
		WithIntervals(5*time.Millisecond, time.Hour),
		WithErrorHandler(func(view string, err error) {
			if view == "timeline" {
				failures.Add(1)
			}
		}))
	poller.Open(NewTimeline(api, 1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx) //nolint:errcheck

	require.Eventually(t, func() bool { return failures.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}
