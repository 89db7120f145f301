package canopy

import "fmt"

// Propagation selects which entities an event visits after its target.
type Propagation uint8

const (
	PropagationUp      Propagation = iota // target, then every ancestor up to the root
	PropagationDirect                     // target only
	PropagationSubtree                    // target, then its descendants depth first
	PropagationNone                       // target only; used for pre-targeted events
)

func (p Propagation) String() string {
	switch p {
	case PropagationUp:
		return "up"
	case PropagationDirect:
		return "direct"
	case PropagationSubtree:
		return "subtree"
	case PropagationNone:
		return "none"
	}
	return fmt.Sprintf("Propagation(%d)", uint8(p))
}

// Event carries an arbitrary message plus its routing. Target is where
// dispatch starts; Origin records who raised it.
type Event struct {
	Message     any
	Target      Entity
	Origin      Entity
	Propagation Propagation

	consumed bool
}

// NewEvent wraps msg in an event that targets the root and propagates up.
func NewEvent(msg any) *Event {
	return &Event{
		Message:     msg,
		Target:      RootEntity,
		Origin:      RootEntity,
		Propagation: PropagationUp,
	}
}

// WithTarget sets the target entity and returns the event.
func (e *Event) WithTarget(target Entity) *Event {
	e.Target = target
	return e
}

// WithOrigin sets the origin entity and returns the event.
func (e *Event) WithOrigin(origin Entity) *Event {
	e.Origin = origin
	return e
}

// WithPropagation sets the propagation mode and returns the event.
func (e *Event) WithPropagation(p Propagation) *Event {
	e.Propagation = p
	return e
}

// Consume stops delivery of the event to any further recipient.
func (e *Event) Consume() { e.consumed = true }

// Consumed reports whether a recipient consumed the event.
func (e *Event) Consumed() bool { return e.consumed }

func (e *Event) String() string {
	return fmt.Sprintf("%T target=%v origin=%v propagation=%v", e.Message, e.Target, e.Origin, e.Propagation)
}

// MessageAs returns the message as an M. The second result is false when the
// message has a different type.
func MessageAs[M any](e *Event) (M, bool) {
	m, ok := e.Message.(M)
	return m, ok
}

// Map calls fn with the message when it is an M and does nothing otherwise.
func Map[M any](e *Event, fn func(M)) {
	if m, ok := e.Message.(M); ok {
		fn(m)
	}
}
