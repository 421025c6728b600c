package events

// Receiver dispatches events to subscribed handlers. Handlers run
// synchronously on the sender's goroutine: the traversal engine and its
// consumer share a single goroutine, so a channel-based bus would
// deadlock the moment a notification fired while the consumer was
// blocked pulling the next item.
type Receiver struct {
	handlers []func(Event)
	closed   bool
}

func New() *Receiver {
	return &Receiver{
		handlers: make([]func(Event), 0),
	}
}

func (er *Receiver) Subscribe(handler func(Event)) {
	er.handlers = append(er.handlers, handler)
}

func (er *Receiver) Send(event Event) {
	if er.closed {
		return
	}
	for _, handler := range er.handlers {
		handler(event)
	}
}

func (er *Receiver) Close() {
	er.closed = true
	er.handlers = er.handlers[:0]
}
