package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Key repeat timing in ticks.
const (
	keyRepeatDelay    = 30
	keyRepeatInterval = 3
)

var ebitenKeys = map[ebiten.Key]Key{
	ebiten.KeyTab:        KeyTab,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeySpace:      KeySpace,
	ebiten.KeyBackspace:  KeyBackspace,
	ebiten.KeyDelete:     KeyDelete,
	ebiten.KeyArrowLeft:  KeyArrowLeft,
	ebiten.KeyArrowRight: KeyArrowRight,
	ebiten.KeyArrowUp:    KeyArrowUp,
	ebiten.KeyArrowDown:  KeyArrowDown,
	ebiten.KeyHome:       KeyHome,
	ebiten.KeyEnd:        KeyEnd,
	ebiten.KeyPageUp:     KeyPageUp,
	ebiten.KeyPageDown:   KeyPageDown,
	ebiten.KeyF5:         KeyF5,
}

var ebitenButtons = [...]struct {
	eb ebiten.MouseButton
	mb MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonRight, MouseButtonRight},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
}

// EbitenInput polls Ebitengine once per frame and forwards every change to
// the context's Dispatch methods.
type EbitenInput struct {
	lastX, lastY int
	polled       bool
	keys         []ebiten.Key
	chars        []rune
}

// NewEbitenInput returns an input poller.
func NewEbitenInput() *EbitenInput {
	return &EbitenInput{}
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// Poll reads this frame's input state.
func (in *EbitenInput) Poll(cx *Context) {
	cx.SetModifiers(readModifiers())

	mx, my := ebiten.CursorPosition()
	if !in.polled || mx != in.lastX || my != in.lastY {
		in.polled = true
		in.lastX, in.lastY = mx, my
		cx.DispatchMouseMove(float64(mx), float64(my))
	}

	for _, b := range ebitenButtons {
		if inpututil.IsMouseButtonJustPressed(b.eb) {
			cx.DispatchMouseButton(b.mb, true)
		}
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			cx.DispatchMouseButton(b.mb, false)
		}
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		cx.DispatchScroll(dx, dy)
	}

	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		if key, ok := ebitenKeys[k]; ok {
			cx.DispatchKey(key, true)
		}
	}
	for k, key := range ebitenKeys {
		d := inpututil.KeyPressDuration(k)
		if d > keyRepeatDelay && (d-keyRepeatDelay)%keyRepeatInterval == 0 {
			cx.DispatchKeyRepeat(key)
		}
	}
	in.keys = inpututil.AppendJustReleasedKeys(in.keys[:0])
	for _, k := range in.keys {
		if key, ok := ebitenKeys[k]; ok {
			cx.DispatchKey(key, false)
		}
	}

	in.chars = ebiten.AppendInputChars(in.chars[:0])
	for _, r := range in.chars {
		cx.DispatchChar(r)
	}

	if ebiten.IsWindowBeingClosed() {
		cx.DispatchClose()
	}
}
