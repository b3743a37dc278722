package syncclient

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimelineInterval = 3 * time.Second
	DefaultInboxInterval    = 10 * time.Second
)

// Poller refreshes the open timeline and the inbox on independent intervals
type Poller struct {
	inbox            *Inbox
	timelineInterval time.Duration
	inboxInterval    time.Duration
	onError          func(view string, err error)
	onRefresh        func(view string)

	mu       sync.Mutex
	timeline *Timeline

	timelineNudge chan struct{}
	inboxNudge    chan struct{}
}

// PollerOption configures a Poller
type PollerOption func(*Poller)

// WithIntervals overrides the poll intervals; zero keeps the default
func WithIntervals(timeline, inbox time.Duration) PollerOption {
	return func(p *Poller) {
		if timeline > 0 {
			p.timelineInterval = timeline
		}
		if inbox > 0 {
			p.inboxInterval = inbox
		}
	}
}

// WithErrorHandler receives refresh failures; polling continues regardless
func WithErrorHandler(fn func(view string, err error)) PollerOption {
	return func(p *Poller) { p.onError = fn }
}

// WithRefreshHandler is called after every successful refresh with "timeline" or "inbox"
func WithRefreshHandler(fn func(view string)) PollerOption {
	return func(p *Poller) { p.onRefresh = fn }
}

// NewPoller creates a Poller for inbox. The timeline is attached later with Open.
func NewPoller(inbox *Inbox, opts ...PollerOption) *Poller {
	p := &Poller{
		inbox:            inbox,
		timelineInterval: DefaultTimelineInterval,
		inboxInterval:    DefaultInboxInterval,
		onError:          func(string, error) {},
		onRefresh:        func(string) {},
		timelineNudge:    make(chan struct{}, 1),
		inboxNudge:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open makes t the polled timeline; nil stops timeline polling
func (p *Poller) Open(t *Timeline) {
	p.mu.Lock()
	p.timeline = t
	p.mu.Unlock()
	nudge(p.timelineNudge)
}

// Timeline returns the polled timeline, if any
func (p *Poller) Timeline() *Timeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeline
}

// Nudge schedules an immediate refresh after a push hint for conversationID.
// The inbox is always refreshed; the timeline only when it shows that conversation.
func (p *Poller) Nudge(conversationID uint64) {
	nudge(p.inboxNudge)
	if t := p.Timeline(); t != nil && t.ConversationID() == conversationID {
		nudge(p.timelineNudge)
	}
}

func nudge(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p.loop(ctx, p.timelineInterval, p.timelineNudge, func(ctx context.Context) {
			t := p.Timeline()
			if t == nil {
				return
			}
			p.report(ctx, "timeline", t.Refresh(ctx))
		})
		return nil
	})
	g.Go(func() error {
		p.loop(ctx, p.inboxInterval, p.inboxNudge, func(ctx context.Context) {
			p.report(ctx, "inbox", p.inbox.Refresh(ctx))
		})
		return nil
	})

	return g.Wait()
}

func (p *Poller) report(ctx context.Context, view string, err error) {
	switch {
	case err == nil:
		p.onRefresh(view)
	case ctx.Err() == nil:
		p.onError(view, err)
	}
}

func (p *Poller) loop(ctx context.Context, interval time.Duration, wake <-chan struct{}, refresh func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// the first refresh covers any nudge queued before Run
	select {
	case <-wake:
	default:
	}
	refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-wake:
			ticker.Reset(interval)
		}
		refresh(ctx)
	}
}
