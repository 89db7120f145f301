package canopy

// ContextProxy sends events into a Context from any goroutine. Events are
// queued and dispatched on the next flush.
type ContextProxy struct {
	queue  *eventQueue
	origin Entity
}

// Proxy returns a proxy whose events originate at the current entity.
func (cx *Context) Proxy() *ContextProxy {
	return &ContextProxy{queue: &cx.queue, origin: cx.current}
}

// Spawn runs fn on a new goroutine with a proxy for the current entity.
func (cx *Context) Spawn(fn func(p *ContextProxy)) {
	p := cx.Proxy()
	go fn(p)
}

// Emit sends msg up the tree from the proxy's entity.
func (p *ContextProxy) Emit(msg any) {
	p.queue.push(&Event{
		Message:     msg,
		Target:      p.origin,
		Origin:      p.origin,
		Propagation: PropagationUp,
	})
}

// EmitTo sends msg directly to target.
func (p *ContextProxy) EmitTo(target Entity, msg any) {
	p.queue.push(&Event{
		Message:     msg,
		Target:      target,
		Origin:      p.origin,
		Propagation: PropagationDirect,
	})
}

// EmitCustom queues ev with the routing it already carries.
func (p *ContextProxy) EmitCustom(ev *Event) {
	p.queue.push(ev)
}

// Entity returns the entity events originate from.
func (p *ContextProxy) Entity() Entity { return p.origin }

func (p *ContextProxy) emitInternal(msg any) {
	p.queue.push(&Event{
		Message:     msg,
		Target:      RootEntity,
		Origin:      p.origin,
		Propagation: PropagationNone,
	})
}
