package canopy

// Label draws a single line of text centred in its box.
type Label struct {
	Text string
}

// NewLabel adds a label under the current entity.
func NewLabel(cx *Context, text string) Entity {
	return cx.Add(&Label{Text: text}, nil)
}

func (*Label) Element() string { return "label" }

func (*Label) Event(cx *Context, ev *Event) {}

// ContentSize measures the text in the label's font-size.
func (l *Label) ContentSize(cx *Context) (w, h float64) {
	size := cx.style.FontSize.Value(cx.Current()).Resolve(0, 16)
	return DefaultFont().Measure(l.Text, size)
}

func (l *Label) Draw(dc *DrawContext) {
	w, h := dc.MeasureText(l.Text)
	sz := dc.Size()
	dc.DrawText(l.Text, (sz.X-w)/2, (sz.Y-h)/2)
}

// Button is a focusable box that calls OnPress when clicked or when Enter or
// Space is pressed while it has focus. Disabled buttons ignore both.
type Button struct {
	OnPress func(cx *Context)
}

// NewButton adds a button under the current entity with a label child.
func NewButton(cx *Context, text string, onPress func(cx *Context)) Entity {
	return cx.Add(&Button{OnPress: onPress}, func(cx *Context) {
		e := cx.Current()
		cx.SetHoverable(e, true)
		cx.SetFocusable(e, true)
		l := NewLabel(cx, text)
		cx.SetHoverable(l, false)
	})
}

func (*Button) Element() string { return "button" }

func (b *Button) Event(cx *Context, ev *Event) {
	press := func() {
		if cx.style.pseudoClasses(cx.Current())&PseudoDisabled != 0 {
			return
		}
		if b.OnPress != nil {
			b.OnPress(cx)
		}
		ev.Consume()
	}
	Map(ev, func(Press) { press() })
	Map(ev, func(k KeyDown) {
		if k.Key == KeyEnter || k.Key == KeySpace {
			press()
		}
	})
}
