package events

import (
	"time"

	"github.com/google/uuid"
)

type Event interface {
	Timestamp() time.Time
}

/**/
type Start struct {
	ts time.Time

	TraversalID uuid.UUID
}

func StartEvent(traversalID uuid.UUID) Start {
	return Start{ts: time.Now(), TraversalID: traversalID}
}
func (e Start) Timestamp() time.Time {
	return e.ts
}

/**/
type Done struct {
	ts time.Time

	TraversalID uuid.UUID
}

func DoneEvent(traversalID uuid.UUID) Done {
	return Done{ts: time.Now(), TraversalID: traversalID}
}
func (e Done) Timestamp() time.Time {
	return e.ts
}

/**/
type PathOpened struct {
	ts time.Time

	TraversalID uuid.UUID
	Pathname    string
}

func PathOpenedEvent(traversalID uuid.UUID, pathname string) PathOpened {
	return PathOpened{ts: time.Now(), TraversalID: traversalID, Pathname: pathname}
}
func (e PathOpened) Timestamp() time.Time {
	return e.ts
}

/**/
type PathClosed struct {
	ts time.Time

	TraversalID uuid.UUID
	Pathname    string
}

func PathClosedEvent(traversalID uuid.UUID, pathname string) PathClosed {
	return PathClosed{ts: time.Now(), TraversalID: traversalID, Pathname: pathname}
}
func (e PathClosed) Timestamp() time.Time {
	return e.ts
}

/**/
type PathIgnored struct {
	ts time.Time

	TraversalID uuid.UUID
	Pathname    string
	Reason      string
}

func PathIgnoredEvent(traversalID uuid.UUID, pathname string, reason string) PathIgnored {
	return PathIgnored{ts: time.Now(), TraversalID: traversalID, Pathname: pathname, Reason: reason}
}
func (e PathIgnored) Timestamp() time.Time {
	return e.ts
}

/**/
type PathError struct {
	ts time.Time

	TraversalID uuid.UUID
	Pathname    string
	Message     string
}

func PathErrorEvent(traversalID uuid.UUID, pathname string, message string) PathError {
	return PathError{ts: time.Now(), TraversalID: traversalID, Pathname: pathname, Message: message}
}
func (e PathError) Timestamp() time.Time {
	return e.ts
}

/**/
type PathMissing struct {
	ts time.Time

	TraversalID uuid.UUID
	Pathname    string
}

func PathMissingEvent(traversalID uuid.UUID, pathname string) PathMissing {
	return PathMissing{ts: time.Now(), TraversalID: traversalID, Pathname: pathname}
}
func (e PathMissing) Timestamp() time.Time {
	return e.ts
}
