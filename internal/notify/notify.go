// Package notify delivers owner notifications for site events. Deliveries
// run off-request through a buffered outbox; a failed notification never
// fails the write that produced it.
package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

// Field is one labelled value inside a notification.
type Field struct {
	Name  string
	Value string
}

// Event is a single notification to deliver.
type Event struct {
	Title      string
	Fields     []Field
	OccurredAt time.Time
}

// Notifier delivers one event to one channel (Discord, mail).
type Notifier interface {
	Send(ctx context.Context, ev Event) error
	Name() string
}

// Outbox accepts events for eventual delivery.
type Outbox interface {
	Emit(ev Event)
}

// Dispatcher fans events out to every notifier from a single background
// goroutine. Emit never blocks: when the buffer is full the event is dropped
// and logged.
type Dispatcher struct {
	ch        chan Event
	notifiers []Notifier
	timeout   time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	d := &Dispatcher{
		ch:        make(chan Event, 64),
		notifiers: notifiers,
		timeout:   30 * time.Second,
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Emit(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	select {
	case d.ch <- ev:
	default:
		log.Printf("ERROR: notification outbox full, dropping %q", ev.Title)
	}
}

// Close stops the dispatcher after draining buffered events.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.ch)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.ch {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	for _, n := range d.notifiers {
		if err := n.Send(ctx, ev); err != nil {
			log.Printf("ERROR: %s notification %q: %v", n.Name(), ev.Title, err)
		}
	}
}

// Discard is an Outbox that drops everything. Used when no notification
// channel is configured and in tests.
type Discard struct{}

func (Discard) Emit(Event) {}
