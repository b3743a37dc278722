package syncclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// State of a view
type State int

const (
	Idle State = iota
	Loading
	Loaded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// ErrEmptyMessage is returned before any request when there is nothing to send
var ErrEmptyMessage = errors.New("message has neither content nor attachment")

// SendOptions optional parts of a send
type SendOptions struct {
	AttachmentURL  string
	AttachmentType string
	ReplyToID      *uint64
}

// Timeline mirrors one open conversation.
// The server list is replaced wholesale on every applied refresh; local sends live in
// pending until a refresh returns their server id.
type Timeline struct {
	api            API
	conversationID uint64
	now            func() time.Time

	mu      sync.Mutex
	seq     sequencer
	other   UserSummary
	server  []Message
	pending []*Entry
	lastErr error
}

// NewTimeline creates an Idle timeline for a conversation
func NewTimeline(api API, conversationID uint64) *Timeline {
	return &Timeline{api: api, conversationID: conversationID, now: time.Now}
}

// ConversationID of the timeline
func (t *Timeline) ConversationID() uint64 { return t.conversationID }

// State returns Idle before the first applied load, Loading while a refresh is in flight
func (t *Timeline) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Timeline) stateLocked() State {
	switch {
	case t.seq.loading():
		return Loading
	case t.seq.applied > 0:
		return Loaded
	default:
		return Idle
	}
}

// Refresh reloads the conversation. A response older than one already applied is discarded.
func (t *Timeline) Refresh(ctx context.Context) error {
	t.mu.Lock()
	seq := t.seq.begin()
	t.mu.Unlock()

	detail, err := t.api.OpenConversation(ctx, t.conversationID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		if !t.seq.fail(seq) {
			return nil
		}
		t.lastErr = err
		return err
	}
	if !t.seq.finish(seq) {
		return nil
	}

	t.lastErr = nil
	t.other = detail.OtherParticipant
	t.server = detail.Messages
	t.prunePendingLocked()
	return nil
}

// prunePendingLocked drops pending entries the server list now contains
func (t *Timeline) prunePendingLocked() {
	if len(t.pending) == 0 {
		return
	}
	known := make(map[uint64]struct{}, len(t.server))
	for _, m := range t.server {
		known[m.ID] = struct{}{}
	}
	kept := t.pending[:0]
	for _, e := range t.pending {
		if e.Kind == Confirmed {
			if _, ok := known[e.ServerID]; ok {
				continue
			}
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(t.pending); i++ {
		t.pending[i] = nil
	}
	t.pending = kept
}

// Send appends an optimistic entry, sends it, then reloads.
// On failure the entry turns Failed and stays visible; it is never retried.
func (t *Timeline) Send(ctx context.Context, content string, opts SendOptions) (Entry, error) {
	content = strings.TrimSpace(content)
	if content == "" && strings.TrimSpace(opts.AttachmentURL) == "" {
		return Entry{}, ErrEmptyMessage
	}

	entry := &Entry{
		Kind:      Optimistic,
		TempID:    newTempID(),
		CreatedAt: t.now(),
		Message: Message{
			ConversationID: t.conversationID,
			Direction:      "mine",
			Content:        content,
			AttachmentURL:  opts.AttachmentURL,
			AttachmentType: opts.AttachmentType,
		},
	}
	t.mu.Lock()
	t.pending = append(t.pending, entry)
	t.mu.Unlock()

	res, err := t.api.Send(ctx, SendRequest{
		ConversationID: t.conversationID,
		Content:        content,
		AttachmentURL:  opts.AttachmentURL,
		AttachmentType: opts.AttachmentType,
		ReplyToID:      opts.ReplyToID,
	})

	t.mu.Lock()
	if err != nil {
		entry.Kind = Failed
		entry.Err = err
		snapshot := *entry
		t.mu.Unlock()
		return snapshot, err
	}
	entry.Kind = Confirmed
	entry.ServerID = res.Message.ID
	entry.Message = res.Message
	snapshot := *entry
	// a refresh may have landed between commit and this response
	t.prunePendingLocked()
	t.mu.Unlock()

	// the poller retries a failed reload; the send itself succeeded
	_ = t.Refresh(ctx) //nolint:errcheck
	return snapshot, nil
}

// Dismiss removes a Failed entry. It reports whether one was removed.
func (t *Timeline) Dismiss(tempID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.pending {
		if e.TempID == tempID && e.Kind == Failed {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return true
		}
	}
	return false
}

// React toggles a reaction and reloads
func (t *Timeline) React(ctx context.Context, messageID uint64, emoji string) error {
	if _, err := t.api.React(ctx, messageID, emoji); err != nil {
		return err
	}
	return t.Refresh(ctx)
}

// Unsend retracts one of the caller's messages and reloads
func (t *Timeline) Unsend(ctx context.Context, messageID uint64) error {
	if err := t.api.Unsend(ctx, messageID); err != nil {
		return err
	}
	return t.Refresh(ctx)
}

// Entries returns the visible list: the server list in server order, then pending entries
// in creation order.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.server)+len(t.pending))
	for _, m := range t.server {
		out = append(out, confirmedEntry(m))
	}
	for _, e := range t.pending {
		out = append(out, *e)
	}
	return out
}

// OtherParticipant of the last applied load
func (t *Timeline) OtherParticipant() UserSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.other
}

// LastError is the error of the most recent failed refresh, cleared by a successful one
func (t *Timeline) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}
