package dmcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/damoang/angple-messenger/pkg/syncclient"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type watchFlags struct {
	noHints          bool
	timelineInterval time.Duration
	inboxInterval    time.Duration
}

func newWatchCommand(opts *RootOptions) *cobra.Command {
	f := &watchFlags{}
	cmd := &cobra.Command{
		Use:   "watch [conversation-id]",
		Short: "Follow the inbox and, optionally, one conversation until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var conversationID uint64
			if len(args) == 1 {
				id, err := parseID(args[0], "conversation id")
				if err != nil {
					return err
				}
				conversationID = id
			}
			return runWatch(cmd, opts, f, conversationID)
		},
	}

	cmd.Flags().BoolVar(&f.noHints, "no-hints", false, "poll only, without the websocket hint stream")
	cmd.Flags().DurationVar(&f.timelineInterval, "timeline-interval", syncclient.DefaultTimelineInterval, "conversation poll interval")
	cmd.Flags().DurationVar(&f.inboxInterval, "inbox-interval", syncclient.DefaultInboxInterval, "inbox poll interval")
	return cmd
}

// watchPrinter writes only what changed since the previous refresh
type watchPrinter struct {
	mu       sync.Mutex
	cmd      *cobra.Command
	json     bool
	inbox    *syncclient.Inbox
	timeline *syncclient.Timeline
	seen     map[uint64]bool
	unread   int
}

func (w *watchPrinter) refreshed(view string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := w.cmd.OutOrStdout()
	switch view {
	case "inbox":
		unread := w.inbox.UnreadConversations()
		if unread == w.unread {
			return
		}
		w.unread = unread
		if w.json {
			_ = writeJSON(out, map[string]int{"unread_conversations": unread}) //nolint:errcheck
			return
		}
		fmt.Fprintf(out, "inbox: %d unread conversation(s)\n", unread)
	case "timeline":
		if w.timeline == nil {
			return
		}
		for _, e := range w.timeline.Entries() {
			if e.Kind != syncclient.Confirmed || w.seen[e.ServerID] {
				continue
			}
			w.seen[e.ServerID] = true
			if w.json {
				_ = writeJSON(out, e.Message) //nolint:errcheck
				continue
			}
			printEntry(out, e)
		}
	}
}

func runWatch(cmd *cobra.Command, opts *RootOptions, f *watchFlags, conversationID uint64) error {
	api := opts.api()
	inbox := syncclient.NewInbox(api)

	printer := &watchPrinter{
		cmd:    cmd,
		json:   opts.Format == "json",
		inbox:  inbox,
		seen:   make(map[uint64]bool),
		unread: -1,
	}
	poller := syncclient.NewPoller(inbox,
		syncclient.WithIntervals(f.timelineInterval, f.inboxInterval),
		syncclient.WithRefreshHandler(printer.refreshed),
		syncclient.WithErrorHandler(func(view string, err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s refresh failed: %v\n", view, err)
		}),
	)
	if conversationID != 0 {
		printer.timeline = syncclient.NewTimeline(api, conversationID)
		poller.Open(printer.timeline)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return poller.Run(ctx) })

	if !f.noHints {
		wsURL, err := syncclient.HintsURL(opts.Server, opts.Token)
		if err != nil {
			return fmt.Errorf("hints url: %w", err)
		}
		hints := newHintListener(wsURL, poller, cmd.ErrOrStderr())
		g.Go(func() error {
			hints.run(ctx)
			return nil
		})
	}

	return g.Wait()
}

var errHintStreamClosed = errors.New("hint stream closed")

// hintListener keeps the hint stream connected; polling covers every gap
type hintListener struct {
	url        string
	listen     func(ctx context.Context, url string, onHint func(syncclient.Hint)) error
	newBackOff func() backoff.BackOff
	nudge      func(conversationID uint64)
	errOut     io.Writer
}

func newHintListener(url string, poller *syncclient.Poller, errOut io.Writer) *hintListener {
	return &hintListener{
		url:        url,
		listen:     syncclient.ListenHints,
		newBackOff: hintBackOff,
		nudge:      poller.Nudge,
		errOut:     errOut,
	}
}

// hintBackOff retries forever, from one second up to thirty
func hintBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// run reconnects until ctx is done. A connection that delivered a hint
// resets the delay.
func (l *hintListener) run(ctx context.Context) {
	b := backoff.WithContext(l.newBackOff(), ctx)

	connect := func() error {
		err := l.listen(ctx, l.url, func(h syncclient.Hint) {
			b.Reset()
			l.nudge(h.ConversationID)
		})
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = errHintStreamClosed
		}
		return err
	}

	_ = backoff.RetryNotify(connect, b, func(err error, wait time.Duration) { //nolint:errcheck
		fmt.Fprintf(l.errOut, "hint stream: %v (retrying in %s)\n", err, wait)
	})
}
