package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/damoang/angple-messenger/internal/common"
	"github.com/damoang/angple-messenger/internal/domain"
	pkglogger "github.com/damoang/angple-messenger/pkg/logger"
	"github.com/rs/zerolog"
)

// Notification is the templated payload of a new message alert.
// SenderName is filled in by the worker when a Directory is configured.
type Notification struct {
	RecipientID    string
	SenderID       string
	SenderName     string
	Snippet        string
	DeepLink       string
	ConversationID uint64
	MessageID      uint64
}

// Sink delivers a notification to one channel (inbox, push, mail...)
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// Directory looks up members off the request path
type Directory interface {
	FindMember(ctx context.Context, id string) (*domain.Member, error)
}

// Config sizes the dispatcher. With a Directory the workers skip recipients
// who opted out of message alerts and resolve the sender's display name.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Directory Directory
}

// Dispatcher hands notifications to sinks on a fixed worker pool.
// Dispatch never blocks: a full queue drops the notification.
type Dispatcher struct {
	queue     chan Notification
	sinks     []Sink
	timeout   time.Duration
	directory Directory
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts cfg.Workers workers draining a queue of cfg.QueueSize
func NewDispatcher(cfg Config, sinks ...Sink) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	d := &Dispatcher{
		queue:     make(chan Notification, cfg.QueueSize),
		sinks:     sinks,
		timeout:   cfg.Timeout,
		directory: cfg.Directory,
		log:       pkglogger.WithComponent("notify"),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.run()
		}()
	}
	return d
}

// Dispatch enqueues n and reports whether it was accepted
func (d *Dispatcher) Dispatch(n Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "dispatcher closed")
		return false
	}

	select {
	case d.queue <- n:
		enqueuedTotal.Inc()
		return true
	default:
		d.drop(n, "queue full")
		return false
	}
}

func (d *Dispatcher) drop(n Notification, reason string) {
	droppedTotal.Inc()
	d.log.Warn().
		Err(common.ErrDependencyFailure).
		Str("recipient_id", n.RecipientID).
		Uint64("conversation_id", n.ConversationID).
		Str("reason", reason).
		Msg("notification dropped")
}

func (d *Dispatcher) run() {
	for n := range d.queue {
		resolved, ok := d.resolve(n)
		if !ok {
			continue
		}
		for _, sink := range d.sinks {
			d.deliver(sink, resolved)
		}
	}
}

// resolve applies the recipient's preferences and the sender's display name
func (d *Dispatcher) resolve(n Notification) (Notification, bool) {
	if d.directory == nil {
		return n, true
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	recipient, err := d.directory.FindMember(ctx, n.RecipientID)
	if err != nil {
		skippedTotal.WithLabelValues("lookup_failed").Inc()
		d.log.Warn().
			Err(err).
			Str("recipient_id", n.RecipientID).
			Uint64("message_id", n.MessageID).
			Msg("notification skipped: recipient lookup failed")
		return n, false
	}
	if !recipient.WantsMessageNotifications() {
		skippedTotal.WithLabelValues("opted_out").Inc()
		return n, false
	}

	if n.SenderName == "" {
		n.SenderName = n.SenderID
		if sender, err := d.directory.FindMember(ctx, n.SenderID); err == nil {
			n.SenderName = sender.DisplayName()
		}
	}
	return n, true
}

func (d *Dispatcher) deliver(sink Sink, n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sink panicked: %v", r)
			}
		}()
		return sink.Deliver(ctx, n)
	}()

	if err != nil {
		deliveriesTotal.WithLabelValues(sink.Name(), "error").Inc()
		d.log.Error().
			Err(err).
			Str("sink", sink.Name()).
			Str("recipient_id", n.RecipientID).
			Uint64("message_id", n.MessageID).
			Msg("notification delivery failed")
		return
	}
	deliveriesTotal.WithLabelValues(sink.Name(), "ok").Inc()
}

// Close stops accepting notifications and waits for queued ones to drain
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
