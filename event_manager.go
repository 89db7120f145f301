package canopy

import (
	"sync"
)

// EntityStore is the interface for optional ECS integration. When set on a
// Context, a record of every dispatched event is forwarded to it.
type EntityStore interface {
	EmitEvent(record DispatchRecord)
}

// DispatchRecord describes one event after the event manager finished
// routing it.
type DispatchRecord struct {
	Message     any
	Target      Entity
	Origin      Entity
	Propagation Propagation
	Consumed    bool
}

// eventQueue is the only state shared across goroutines.
type eventQueue struct {
	mu     sync.Mutex
	events []*Event
}

func (q *eventQueue) push(ev *Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// drain moves every queued event into dst.
func (q *eventQueue) drain(dst []*Event) []*Event {
	q.mu.Lock()
	dst = append(dst, q.events...)
	clear(q.events)
	q.events = q.events[:0]
	q.mu.Unlock()
	return dst
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// EventManager routes queued events through listeners, the target and the
// propagation walk.
type EventManager struct {
	tree      *Tree // snapshot used for propagation walks
	events    []*Event
	listeners []Entity
	globals   []func(*Context, *Event)
	walk      []Entity
}

// NewEventManager returns an event manager with an empty snapshot.
func NewEventManager() *EventManager {
	return &EventManager{}
}

// Flush dispatches every event queued before the call, in order. Events
// emitted while flushing wait for the next call. Flush reports whether the
// queue is non-empty afterwards; callers loop until it returns false.
func (m *EventManager) Flush(cx *Context) bool {
	m.events = cx.queue.drain(m.events[:0])

	if m.tree == nil || cx.tree.changed {
		m.tree = cx.tree.Clone()
		cx.tree.changed = false
	}

	for _, ev := range m.events {
		if cx.interceptInternal(ev) {
			continue
		}
		m.dispatch(cx, ev)
		if cx.store != nil {
			cx.store.EmitEvent(DispatchRecord{
				Message:     ev.Message,
				Target:      ev.Target,
				Origin:      ev.Origin,
				Propagation: ev.Propagation,
				Consumed:    ev.consumed,
			})
		}
	}
	clear(m.events)

	return cx.queue.len() > 0
}

func (m *EventManager) dispatch(cx *Context, ev *Event) {
	// Per-entity listeners, in installation order. A listener only runs while
	// its entity has a view to hand it.
	m.listeners = append(m.listeners[:0], cx.listenerOrder...)
	for _, e := range m.listeners {
		fn, ok := cx.listeners.Get(e)
		if !ok {
			continue
		}
		view, ok := cx.views.take(e)
		if !ok {
			continue
		}
		cx.WithCurrent(e, func(cx *Context) {
			fn(view, cx, ev)
		})
		cx.views.restore(e, view)
		if ev.consumed {
			return
		}
	}

	m.globals = append(m.globals[:0], cx.globalListeners...)
	for _, fn := range m.globals {
		fn(cx, ev)
		if ev.consumed {
			return
		}
	}
	clear(m.globals)

	cx.visitEntity(ev.Target, ev)
	if ev.consumed {
		return
	}

	switch ev.Propagation {
	case PropagationUp:
		m.walk = m.walk[:0]
		for a := range m.tree.Ancestors(ev.Target) {
			m.walk = append(m.walk, a)
		}
	case PropagationSubtree:
		m.walk = m.walk[:0]
		for d := range m.tree.Branch(ev.Target) {
			if d != ev.Target {
				m.walk = append(m.walk, d)
			}
		}
	default:
		return
	}
	for _, e := range m.walk {
		cx.visitEntity(e, ev)
		if ev.consumed {
			return
		}
	}
}
