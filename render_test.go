package canopy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// cmdSummary is the comparable part of a RenderCommand.
type cmdSummary struct {
	Type   CommandType
	Entity Entity
	Rect   Rect
	Color  Color
	Text   string
}

func buildCommands(cx *Context) []cmdSummary {
	r := NewRenderer()
	r.Build(cx)
	var out []cmdSummary
	for _, c := range r.Commands() {
		out = append(out, cmdSummary{c.Type, c.Entity, c.Rect, c.Color, c.Text})
	}
	return out
}

func sizedBox(cx *Context, parent Entity, w, h float64) Entity {
	e := addTo(cx, parent, nil)
	cx.style.Width.Insert(e, Pixels(w))
	cx.style.Height.Insert(e, Pixels(h))
	return e
}

var (
	red   = Color{1, 0, 0, 1}
	green = Color{0, 1, 0, 1}
	blue  = Color{0, 0, 1, 1}
)

func TestRenderBoxBorderOutline(t *testing.T) {
	cx := NewContext()
	a := sizedBox(cx, RootEntity, 100, 50)
	s := cx.style
	s.BackgroundColor.Insert(a, red)
	s.BorderWidth.Insert(a, Pixels(2))
	s.BorderColor.Insert(a, blue)
	s.OutlineWidth.Insert(a, Pixels(1))
	s.OutlineOffset.Insert(a, Pixels(1))
	s.OutlineColor.Insert(a, green)
	runLayout(cx, 200, 200)

	want := []cmdSummary{
		// Outline: one pixel wide, one pixel outside the box.
		{CommandBox, a, Rect{-2, -2, 104, 1}, green, ""},
		{CommandBox, a, Rect{-2, 51, 104, 1}, green, ""},
		{CommandBox, a, Rect{-2, -1, 1, 52}, green, ""},
		{CommandBox, a, Rect{101, -1, 1, 52}, green, ""},
		{CommandBox, a, Rect{0, 0, 100, 50}, red, ""},
		{CommandBox, a, Rect{0, 0, 100, 2}, blue, ""},
		{CommandBox, a, Rect{0, 48, 100, 2}, blue, ""},
		{CommandBox, a, Rect{0, 2, 2, 46}, blue, ""},
		{CommandBox, a, Rect{98, 2, 2, 46}, blue, ""},
	}
	if diff := cmp.Diff(want, buildCommands(cx)); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

func TestRenderPaintOrderAndVisibility(t *testing.T) {
	cx := NewContext()
	s := cx.style
	first := sizedBox(cx, RootEntity, 10, 10)
	second := sizedBox(cx, RootEntity, 10, 10)
	s.ZIndex.Insert(first, 1)

	hidden := sizedBox(cx, RootEntity, 10, 10)
	s.Visibility.Insert(hidden, Hidden)
	inHidden := sizedBox(cx, hidden, 5, 5)

	gone := sizedBox(cx, RootEntity, 10, 10)
	s.Display.Insert(gone, DisplayNone)
	inGone := sizedBox(cx, gone, 5, 5)

	faded := sizedBox(cx, RootEntity, 10, 10)
	s.Opacity.Insert(faded, 0.5)
	invisible := sizedBox(cx, RootEntity, 10, 10)
	s.Opacity.Insert(invisible, 0)

	for _, e := range []Entity{first, second, hidden, inHidden, gone, inGone, faded, invisible} {
		s.BackgroundColor.Insert(e, red)
	}
	runLayout(cx, 100, 100)

	var got []Entity
	var fadedColor Color
	for _, c := range buildCommands(cx) {
		got = append(got, c.Entity)
		if c.Entity == faded {
			fadedColor = c.Color
		}
	}
	want := []Entity{second, inHidden, faded, first}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paint order (-want +got):\n%s", diff)
	}
	if fadedColor.A != 0.5 {
		t.Errorf("faded alpha = %v, want 0.5", fadedColor.A)
	}
}

func TestRenderLabelText(t *testing.T) {
	cx := NewContext()
	box := sizedBox(cx, RootEntity, 120, 40)
	var label Entity
	cx.WithCurrent(box, func(cx *Context) { label = NewLabel(cx, "hello") })
	cx.style.FontColor.Insert(label, blue)
	runLayout(cx, 200, 200)

	cmds := buildCommands(cx)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1: %v", len(cmds), cmds)
	}
	c := cmds[0]
	if c.Type != CommandText || c.Text != "hello" || c.Color != blue || c.Entity != label {
		t.Errorf("command = %+v", c)
	}
	// Centred horizontally inside the label's box.
	w, _ := DefaultFont().Measure("hello", 16)
	if got, want := c.Rect.X, (120-w)/2; got != want {
		t.Errorf("text x = %v, want %v", got, want)
	}
}

func TestRenderDrawerCommands(t *testing.T) {
	cx := NewContext()
	var e Entity
	e = addTo(cx, RootEntity, drawFunc(func(dc *DrawContext) {
		if dc.Entity() != e {
			t.Errorf("DrawContext entity = %v", dc.Entity())
		}
		dc.FillRect(Rect{5, 5, 10, 10}, green)
		dc.DrawImage(nil, Rect{0, 0, 1, 1})
	}))
	cx.style.Top.Insert(e, Pixels(20))
	cx.style.Height.Insert(e, Pixels(30))
	runLayout(cx, 100, 100)

	want := []cmdSummary{{CommandBox, e, Rect{5, 25, 10, 10}, green, ""}}
	if diff := cmp.Diff(want, buildCommands(cx)); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

type drawFunc func(dc *DrawContext)

func (drawFunc) Event(*Context, *Event) {}

func (f drawFunc) Draw(dc *DrawContext) { f(dc) }

func TestGeoM(t *testing.T) {
	m := [6]float64{2, 0.5, -1, 3, 7, 9}
	g := geoM(m)
	x, y := g.Apply(1, 1)
	wx, wy := transformPoint(m, 1, 1)
	assertNear(t, "x", x, wx)
	assertNear(t, "y", y, wy)
}
