// Package notify delivers outbound email off the request path.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrClosed = errors.New("notify: dispatcher closed")

// Dispatcher feeds a bounded queue to a fixed pool of workers. Each send gets
// its own timeout, independent of whoever enqueued the message.
type Dispatcher struct {
	sender  Sender
	queue   chan Message
	timeout time.Duration
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, workers, queueSize int, timeout time.Duration, l *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if l == nil {
		l = slog.Default()
	}

	d := &Dispatcher{
		sender:  sender,
		queue:   make(chan Message, queueSize),
		timeout: timeout,
		log:     l.With("svc", "notify"),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Enqueue never blocks. It reports false when the message was dropped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("notify_dropped", "reason", "closed")
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.log.Warn("notify_dropped", "reason", "queue_full")
		return false
	}
}

// Close stops intake and waits for queued messages to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
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

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		d.log.Error("notify_failed", "subject", msg.Subject, "error", err)
		return
	}
	d.log.Info("notify_sent", "subject", msg.Subject)
}

// LogSender only records that a message would have gone out.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	l := s.Log
	if l == nil {
		l = slog.Default()
	}
	l.Info("email_skipped", "reason", "no_provider", "subject", msg.Subject)
	return nil
}
