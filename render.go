package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandBox   CommandType = iota // solid rectangle
	CommandImage                    // image scaled into a rectangle
	CommandText                     // single run of text
)

// RenderCommand is a single draw instruction emitted during tree traversal.
// Rect is in window coordinates before Transform is applied.
type RenderCommand struct {
	Type      CommandType
	Entity    Entity
	Transform [6]float64
	Rect      Rect
	Color     Color // alpha already multiplied by the entity's opacity
	Image     *ebiten.Image
	Text      string
	FontSize  float64
}

// Renderer turns the styled, laid-out tree into draw calls. Boxes are drawn
// by scaling and tinting a 1x1 white image.
type Renderer struct {
	Font *Font

	commands []RenderCommand
	op       ebiten.DrawImageOptions
}

// NewRenderer returns a renderer using the default font for text.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Commands returns the commands built by the last Build or Draw call.
func (r *Renderer) Commands() []RenderCommand { return r.commands }

func (r *Renderer) font() *Font {
	if r.Font == nil {
		r.Font = DefaultFont()
	}
	return r.Font
}

// Build walks the tree in paint order and records the commands without
// drawing anything.
func (r *Renderer) Build(cx *Context) {
	clear(r.commands)
	r.commands = r.commands[:0]
	r.traverse(cx, RootEntity)
}

// Draw builds the command list and submits it to screen.
func (r *Renderer) Draw(cx *Context, screen *ebiten.Image) {
	r.Build(cx)
	for i := range r.commands {
		r.submit(screen, &r.commands[i])
	}
	cx.style.needsRedraw = false
}

func (r *Renderer) traverse(cx *Context, e Entity) {
	s := cx.style
	if s.Display.Value(e) == DisplayNone {
		return
	}
	en := cx.cache.entry(e)
	if en == nil {
		return
	}

	if s.Visibility.Value(e) == Visible && en.alpha > 0 {
		b := en.bounds
		if w := s.OutlineWidth.Value(e).Resolve(b.Width, 0); w > 0 {
			off := s.OutlineOffset.Value(e).Resolve(b.Width, 0)
			r.stroke(e, en, b.Inset(-off-w), w, s.OutlineColor.Value(e))
		}
		if bg := s.BackgroundColor.Value(e); bg.A > 0 {
			r.box(e, en, b, bg)
		}
		if w := s.BorderWidth.Value(e).Resolve(b.Width, 0); w > 0 {
			r.stroke(e, en, b, w, s.BorderColor.Value(e))
		}
		if v, ok := cx.views.Get(e); ok {
			if d, ok := v.(Drawer); ok {
				d.Draw(&DrawContext{cx: cx, r: r, entity: e, entry: en})
			}
		}
	}

	for _, child := range cx.paintChildren(e) {
		r.traverse(cx, child)
	}
}

func (r *Renderer) box(e Entity, en *cacheEntry, rect Rect, c Color) {
	c = c.WithAlpha(en.alpha)
	if c.A <= 0 || rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	r.commands = append(r.commands, RenderCommand{
		Type:      CommandBox,
		Entity:    e,
		Transform: en.world,
		Rect:      rect,
		Color:     c,
	})
}

// stroke draws a frame of width w along the inside of rect.
func (r *Renderer) stroke(e Entity, en *cacheEntry, rect Rect, w float64, c Color) {
	if c.A <= 0 {
		return
	}
	w = min(w, rect.Width/2, rect.Height/2)
	r.box(e, en, Rect{rect.X, rect.Y, rect.Width, w}, c)
	r.box(e, en, Rect{rect.X, rect.Y + rect.Height - w, rect.Width, w}, c)
	r.box(e, en, Rect{rect.X, rect.Y + w, w, rect.Height - 2*w}, c)
	r.box(e, en, Rect{rect.X + rect.Width - w, rect.Y + w, w, rect.Height - 2*w}, c)
}

// geoM converts a [6]float64 transform into an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

func (r *Renderer) submit(dst *ebiten.Image, cmd *RenderCommand) {
	world := geoM(cmd.Transform)
	c := cmd.Color
	a := float32(c.A)

	switch cmd.Type {
	case CommandBox:
		op := &r.op
		op.GeoM.Reset()
		op.GeoM.Scale(cmd.Rect.Width, cmd.Rect.Height)
		op.GeoM.Translate(cmd.Rect.X, cmd.Rect.Y)
		op.GeoM.Concat(world)
		op.ColorScale.Reset()
		op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
		dst.DrawImage(WhitePixel(), op)

	case CommandImage:
		if cmd.Image == nil {
			return
		}
		b := cmd.Image.Bounds()
		if b.Dx() == 0 || b.Dy() == 0 {
			return
		}
		op := &r.op
		op.GeoM.Reset()
		op.GeoM.Scale(cmd.Rect.Width/float64(b.Dx()), cmd.Rect.Height/float64(b.Dy()))
		op.GeoM.Translate(cmd.Rect.X, cmd.Rect.Y)
		op.GeoM.Concat(world)
		op.ColorScale.Reset()
		op.ColorScale.ScaleAlpha(a)
		dst.DrawImage(cmd.Image, op)

	case CommandText:
		f := r.font()
		op := &text.DrawOptions{}
		op.GeoM.Translate(cmd.Rect.X, cmd.Rect.Y)
		op.GeoM.Concat(world)
		op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
		op.LineSpacing = f.LineHeight(cmd.FontSize)
		text.Draw(dst, cmd.Text, f.Face(cmd.FontSize), op)
	}
}

// DrawContext is handed to Drawer views. Coordinates are local to the
// entity's bounds; the entity's transform and opacity are applied.
type DrawContext struct {
	cx     *Context
	r      *Renderer
	entity Entity
	entry  *cacheEntry
}

// Context returns the UI context. It must not be modified while drawing.
func (dc *DrawContext) Context() *Context { return dc.cx }

// Entity returns the entity being drawn.
func (dc *DrawContext) Entity() Entity { return dc.entity }

// Bounds returns the entity's layout box in window coordinates.
func (dc *DrawContext) Bounds() Rect { return dc.entry.bounds }

// Size returns the width and height of the entity's box.
func (dc *DrawContext) Size() Vec2 {
	return Vec2{dc.entry.bounds.Width, dc.entry.bounds.Height}
}

func (dc *DrawContext) toWindow(r Rect) Rect {
	r.X += dc.entry.bounds.X
	r.Y += dc.entry.bounds.Y
	return r
}

// FillRect fills a rectangle given in local coordinates.
func (dc *DrawContext) FillRect(r Rect, c Color) {
	dc.r.box(dc.entity, dc.entry, dc.toWindow(r), c)
}

// DrawImage scales img into a rectangle given in local coordinates.
func (dc *DrawContext) DrawImage(img *ebiten.Image, r Rect) {
	if img == nil {
		return
	}
	dc.r.commands = append(dc.r.commands, RenderCommand{
		Type:      CommandImage,
		Entity:    dc.entity,
		Transform: dc.entry.world,
		Rect:      dc.toWindow(r),
		Color:     ColorWhite.WithAlpha(dc.entry.alpha),
		Image:     img,
	})
}

// DrawText draws s with its top-left at (x, y) in local coordinates, using
// the entity's font-size and font-color.
func (dc *DrawContext) DrawText(s string, x, y float64) {
	st := dc.cx.style
	size := st.FontSize.Value(dc.entity).Resolve(dc.entry.bounds.Height, 16)
	c := st.FontColor.Value(dc.entity).WithAlpha(dc.entry.alpha)
	if s == "" || c.A <= 0 {
		return
	}
	dc.r.commands = append(dc.r.commands, RenderCommand{
		Type:      CommandText,
		Entity:    dc.entity,
		Transform: dc.entry.world,
		Rect:      dc.toWindow(Rect{X: x, Y: y}),
		Color:     c,
		Text:      s,
		FontSize:  size,
	})
}

// MeasureText returns the size of s in the entity's font size.
func (dc *DrawContext) MeasureText(s string) (w, h float64) {
	size := dc.cx.style.FontSize.Value(dc.entity).Resolve(dc.entry.bounds.Height, 16)
	return dc.r.font().Measure(s, size)
}
