package walker

import (
	"github.com/google/uuid"

	"github.com/sderose/powerwalk/events"
)

// A deliverer turns internal frame transitions into whatever the
// configuration says should be externally visible. Both implementations
// are fed from the same emission path in state.go so the engine's state
// machine exists only once.
type deliverer interface {
	opened(pathname string) (*Event, error)
	closed(pathname string) (*Event, error)
	leaf(ev *Event) (*Event, error)
	ignored(pathname string, reason string) (*Event, error)
	failed(pathname string, message string, missing bool) (*Event, error)
	finished() error
}

// valueDeliverer returns plain events, suppressing the categories the
// configuration does not want to see.
type valueDeliverer struct {
	containers bool
	ignorables bool
	errors     bool
}

func (d *valueDeliverer) opened(pathname string) (*Event, error) {
	if !d.containers {
		return nil, nil
	}
	return &Event{Pathname: pathname, Kind: OPEN}, nil
}

func (d *valueDeliverer) closed(pathname string) (*Event, error) {
	if !d.containers {
		return nil, nil
	}
	return &Event{Pathname: pathname, Kind: CLOSE}, nil
}

func (d *valueDeliverer) leaf(ev *Event) (*Event, error) {
	return ev, nil
}

func (d *valueDeliverer) ignored(pathname string, reason string) (*Event, error) {
	if !d.ignorables {
		return nil, nil
	}
	return &Event{Pathname: pathname, Kind: IGNORE, Reason: reason}, nil
}

func (d *valueDeliverer) failed(pathname string, message string, missing bool) (*Event, error) {
	if !d.errors {
		return nil, nil
	}
	kind := ERROR
	if missing {
		kind = MISSING
	}
	return &Event{Pathname: pathname, Kind: kind, Message: message}, nil
}

func (d *valueDeliverer) finished() error {
	return nil
}

// signalDeliverer raises container and ignorable notifications on the
// event receiver, surfaces error and missing conditions as a *WalkError
// from Next, and announces Done at exhaustion. Leaves are still returned
// values: there is no suppression mode for genuine leaves.
type signalDeliverer struct {
	containers bool
	ignorables bool
	errors     bool

	traversalID uuid.UUID
	receiver    *events.Receiver
}

func (d *signalDeliverer) opened(pathname string) (*Event, error) {
	if d.containers {
		d.receiver.Send(events.PathOpenedEvent(d.traversalID, pathname))
	}
	return nil, nil
}

func (d *signalDeliverer) closed(pathname string) (*Event, error) {
	if d.containers {
		d.receiver.Send(events.PathClosedEvent(d.traversalID, pathname))
	}
	return nil, nil
}

func (d *signalDeliverer) leaf(ev *Event) (*Event, error) {
	return ev, nil
}

func (d *signalDeliverer) ignored(pathname string, reason string) (*Event, error) {
	if d.ignorables {
		d.receiver.Send(events.PathIgnoredEvent(d.traversalID, pathname, reason))
	}
	return nil, nil
}

func (d *signalDeliverer) failed(pathname string, message string, missing bool) (*Event, error) {
	if !d.errors {
		return nil, nil
	}
	if missing {
		d.receiver.Send(events.PathMissingEvent(d.traversalID, pathname))
	} else {
		d.receiver.Send(events.PathErrorEvent(d.traversalID, pathname, message))
	}
	return nil, &WalkError{Pathname: pathname, Message: message, Missing: missing}
}

func (d *signalDeliverer) finished() error {
	d.receiver.Send(events.DoneEvent(d.traversalID))
	return nil
}
