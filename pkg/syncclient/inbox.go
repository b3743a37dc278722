package syncclient

import (
	"context"
	"sync"
)

// Inbox mirrors the caller's conversation list
type Inbox struct {
	api API

	mu      sync.Mutex
	seq     sequencer
	items   []Conversation
	lastErr error
}

// NewInbox creates an Idle inbox
func NewInbox(api API) *Inbox {
	return &Inbox{api: api}
}

// Refresh reloads the list; stale responses are discarded
func (i *Inbox) Refresh(ctx context.Context) error {
	i.mu.Lock()
	seq := i.seq.begin()
	i.mu.Unlock()

	items, err := i.api.ListConversations(ctx)

	i.mu.Lock()
	defer i.mu.Unlock()
	if err != nil {
		if !i.seq.fail(seq) {
			return nil
		}
		i.lastErr = err
		return err
	}
	if i.seq.finish(seq) {
		i.items = items
		i.lastErr = nil
	}
	return nil
}

// State of the inbox
func (i *Inbox) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	switch {
	case i.seq.loading():
		return Loading
	case i.seq.applied > 0:
		return Loaded
	default:
		return Idle
	}
}

// Conversations returns a copy of the last applied list, most recent activity first
func (i *Inbox) Conversations() []Conversation {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Conversation(nil), i.items...)
}

// UnreadConversations counts conversations with an unread flag
func (i *Inbox) UnreadConversations() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	n := 0
	for _, c := range i.items {
		if c.UnreadCount > 0 {
			n++
		}
	}
	return n
}

// LastError is the error of the most recent failed refresh
func (i *Inbox) LastError() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastErr
}
