package canopy

// syntheticEvent is a single injected input event. Pointer events use window
// coordinates, the same ones a screenshot shows.
type syntheticEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
	key     Key // KeyUnknown for pointer events
}

// InjectPress queues a left button press at (x, y). The event is consumed on
// the next frame, replacing polled input for that frame.
func (a *Application) InjectPress(x, y float64) {
	a.injectQueue = append(a.injectQueue, syntheticEvent{
		x: x, y: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move to (x, y) with the button held down. Use
// it between InjectPress and InjectRelease to simulate a drag.
func (a *Application) InjectMove(x, y float64) {
	a.injectQueue = append(a.injectQueue, syntheticEvent{
		x: x, y: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a left button release at (x, y).
func (a *Application) InjectRelease(x, y float64) {
	a.injectQueue = append(a.injectQueue, syntheticEvent{
		x: x, y: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick queues a press followed by a release at the same position.
// Consumes two frames.
func (a *Application) InjectClick(x, y float64) {
	a.InjectPress(x, y)
	a.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The sequence consumes frames frames, at least 2.
func (a *Application) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	a.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		a.InjectMove(x, y)
	}
	a.InjectRelease(toX, toY)
}

// InjectKey queues a key press and release. Consumes two frames.
func (a *Application) InjectKey(key Key) {
	a.injectQueue = append(a.injectQueue,
		syntheticEvent{key: key, pressed: true},
		syntheticEvent{key: key, pressed: false},
	)
}

// processInjectedInput pops one event from the inject queue and feeds it to
// the context. Returns true if an event was consumed, in which case polled
// input is skipped for the frame.
func (a *Application) processInjectedInput() bool {
	if len(a.injectQueue) == 0 {
		return false
	}
	evt := a.injectQueue[0]
	copy(a.injectQueue, a.injectQueue[1:])
	a.injectQueue = a.injectQueue[:len(a.injectQueue)-1]

	cx := a.cx
	if evt.key != KeyUnknown {
		cx.DispatchKey(evt.key, evt.pressed)
		return true
	}

	pos := cx.MousePosition()
	if pos.X != evt.x || pos.Y != evt.y {
		cx.DispatchMouseMove(evt.x, evt.y)
	}
	if evt.pressed != cx.input.down {
		cx.DispatchMouseButton(evt.button, evt.pressed)
	}
	return true
}
