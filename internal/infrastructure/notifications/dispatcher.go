package notifications

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/you/erpauth/domain"
	"go.uber.org/zap"
)

const deliverTimeout = 5 * time.Second

// Dispatcher forwards notifications to the notification collaborator on a
// background goroutine. Publish never blocks; a full buffer drops the message.
type Dispatcher struct {
	sink      domain.NotificationService
	logger    *zap.Logger
	ch        chan domain.Notification
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closeOnce sync.Once

	// mu orders every send before the close of done
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the delivery goroutine
func NewDispatcher(sink domain.NotificationService, bufferSize int, logger *zap.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		ch:     make(chan domain.Notification, bufferSize),
		done:   make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case n := <-d.ch:
			d.deliver(n)
		case <-d.done:
			for {
				select {
				case n := <-d.ch:
					d.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if err := d.sink.Notify(ctx, n); err != nil {
		d.logger.Warn("notification delivery failed",
			zap.String("user_id", n.UserID),
			zap.String("title", n.Title),
			zap.Error(err))
	}
}

// Publish implements domain.NotificationPublisher
func (d *Dispatcher) Publish(n domain.Notification) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(n, "dispatcher closed")
		return
	}

	select {
	case d.ch <- n:
	default:
		d.drop(n, "buffer full")
	}
}

func (d *Dispatcher) drop(n domain.Notification, reason string) {
	d.dropped.Add(1)
	d.logger.Warn("notification dropped",
		zap.String("reason", reason),
		zap.String("user_id", n.UserID),
		zap.String("title", n.Title))
}

// Close drains queued notifications and stops the goroutine
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.done)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// Dropped returns how many notifications were discarded
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

var _ domain.NotificationPublisher = (*Dispatcher)(nil)
