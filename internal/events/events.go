// Package events provides a typed, synchronous event dispatcher.
//
// Engines expose one Dispatcher per event type. Delivery happens inline
// during Publish, in subscription order, before the publishing operation
// returns. There is no queueing and no locking: character state is owned
// by a single logical actor (see the session orchestrator).
package events

// Handler consumes events of type E.
type Handler[E any] func(E)

type subscription[E any] struct {
	id      int
	handler Handler[E]
}

// Dispatcher fans events out to subscribers synchronously.
// The zero value is ready to use.
type Dispatcher[E any] struct {
	nextID int
	subs   []subscription[E]
}

// Subscribe registers a handler and returns a handle for Unsubscribe.
func (d *Dispatcher[E]) Subscribe(fn Handler[E]) int {
	d.nextID++
	d.subs = append(d.subs, subscription[E]{id: d.nextID, handler: fn})
	return d.nextID
}

// Unsubscribe removes the handler registered under id. Unknown ids are
// ignored.
func (d *Dispatcher[E]) Unsubscribe(id int) {
	for i, sub := range d.subs {
		if sub.id == id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every subscriber in subscription order.
func (d *Dispatcher[E]) Publish(ev E) {
	for _, sub := range d.subs {
		sub.handler(ev)
	}
}

// Len returns the number of active subscriptions.
func (d *Dispatcher[E]) Len() int {
	return len(d.subs)
}
