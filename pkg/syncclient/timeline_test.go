package syncclient

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_SendConfirmsAndReloads(t *testing.T) {
	api := &fakeAPI{}
	api.addMessage("hello")
	tl := NewTimeline(api, 1)
	require.NoError(t, tl.Refresh(context.Background()))

	entry, err := tl.Send(context.Background(), "  hi back  ", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, Confirmed, entry.Kind)
	assert.True(t, strings.HasPrefix(entry.TempID, "tmp-"))
	assert.Equal(t, uint64(2), entry.ServerID)
	assert.Equal(t, "hi back", entry.Message.Content)

	entries := tl.Entries()
	require.Len(t, entries, 2, "confirmed send must not appear twice after the reload")
	assert.Equal(t, uint64(1), entries[0].ServerID)
	assert.Equal(t, uint64(2), entries[1].ServerID)
	assert.Equal(t, 2, api.openCalls())
}

func TestTimeline_SendFailureStaysVisible(t *testing.T) {
	api := &fakeAPI{sendErr: &APIError{Status: 403, Code: "FORBIDDEN"}}
	api.addMessage("hello")
	tl := NewTimeline(api, 1)
	require.NoError(t, tl.Refresh(context.Background()))

	entry, err := tl.Send(context.Background(), "blocked", SendOptions{})
	require.Error(t, err)
	assert.True(t, IsStatus(err, 403))
	assert.Equal(t, Failed, entry.Kind)

	// no retry and no reload on failure
	assert.Equal(t, 1, api.openCalls())

	require.NoError(t, tl.Refresh(context.Background()))
	entries := tl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Failed, entries[1].Kind)
	assert.Equal(t, "blocked", entries[1].Message.Content)

	t.Run("Dismiss는 실패 항목만 지운다", func(t *testing.T) {
		assert.False(t, tl.Dismiss("tmp-unknown"))
		assert.True(t, tl.Dismiss(entry.TempID))
		assert.Len(t, tl.Entries(), 1)
		assert.False(t, tl.Dismiss(entry.TempID))
	})
}

func TestTimeline_EmptySendNeverCallsServer(t *testing.T) {
	api := &fakeAPI{}
	tl := NewTimeline(api, 1)

	_, err := tl.Send(context.Background(), "   ", SendOptions{})
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, tl.Entries())

	entry, err := tl.Send(context.Background(), "", SendOptions{AttachmentURL: "https://cdn.test/a.pdf", AttachmentType: "file"})
	require.NoError(t, err)
	assert.Equal(t, Confirmed, entry.Kind)
}

func TestTimeline_PendingFollowsServerList(t *testing.T) {
	api := &fakeAPI{sendErr: errors.New("offline")}
	tl := NewTimeline(api, 1)

	_, _ = tl.Send(context.Background(), "first", SendOptions{})  //nolint:errcheck
	_, _ = tl.Send(context.Background(), "second", SendOptions{}) //nolint:errcheck

	api.addMessage("from server")
	require.NoError(t, tl.Refresh(context.Background()))

	entries := tl.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "from server", entries[0].Message.Content)
	assert.Equal(t, "first", entries[1].Message.Content)
	assert.Equal(t, "second", entries[2].Message.Content)
}

func TestTimeline_StaleResponseDiscarded(t *testing.T) {
	api := &fakeAPI{}
	release := make(chan struct{})
	api.onOpen = func(call int) {
		if call == 1 {
			<-release
		}
	}
	tl := NewTimeline(api, 1)
	assert.Equal(t, Idle, tl.State())

	slow := make(chan error, 1)
	go func() { slow <- tl.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return api.openCalls() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, Loading, tl.State())

	api.addMessage("newer")
	require.NoError(t, tl.Refresh(context.Background()))
	require.Len(t, tl.Entries(), 1)

	close(release)
	require.NoError(t, <-slow)

	// the older, empty snapshot must not overwrite the newer one
	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "newer", entries[0].Message.Content)
	assert.Equal(t, Loaded, tl.State())
}

func TestTimeline_SupersededFailureIsNotReported(t *testing.T) {
	api := &fakeAPI{}
	release := make(chan struct{})
	api.onOpen = func(call int) {
		if call == 1 {
			<-release
		}
	}
	api.openErrFor = func(call int) error {
		if call == 1 {
			return errors.New("connection reset")
		}
		return nil
	}
	tl := NewTimeline(api, 1)

	slow := make(chan error, 1)
	go func() { slow <- tl.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return api.openCalls() == 1 }, time.Second, time.Millisecond)

	api.addMessage("newer")
	require.NoError(t, tl.Refresh(context.Background()))

	close(release)
	require.NoError(t, <-slow)

	assert.NoError(t, tl.LastError())
	assert.Equal(t, Loaded, tl.State())
	require.Len(t, tl.Entries(), 1)
	assert.Equal(t, "newer", tl.Entries()[0].Message.Content)
}

func TestTimeline_RefreshErrorKeepsLastList(t *testing.T) {
	api := &fakeAPI{}
	api.addMessage("kept")
	tl := NewTimeline(api, 1)
	require.NoError(t, tl.Refresh(context.Background()))

	api.mu.Lock()
	api.openErr = errors.New("timeout")
	api.mu.Unlock()

	require.Error(t, tl.Refresh(context.Background()))
	assert.Len(t, tl.Entries(), 1)
	assert.Error(t, tl.LastError())
	assert.Equal(t, Loaded, tl.State())
}

func TestTimeline_ReactAndUnsendReload(t *testing.T) {
	api := &fakeAPI{}
	m := api.addMessage("hello")
	tl := NewTimeline(api, 1)
	require.NoError(t, tl.Refresh(context.Background()))

	require.NoError(t, tl.React(context.Background(), m.ID, "👍"))
	entries := tl.Entries()
	require.Len(t, entries[0].Message.Reactions, 1)
	assert.True(t, entries[0].Message.Reactions[0].Mine)

	require.NoError(t, tl.Unsend(context.Background(), m.ID))
	assert.True(t, tl.Entries()[0].Message.IsDeleted)
	assert.Equal(t, "Bob", tl.OtherParticipant().DisplayName)

	assert.Error(t, tl.React(context.Background(), 999, "👍"))
}
