package canopy

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseThemeDeclarations(t *testing.T) {
	s := NewStyle()
	diags := s.ParseTheme(`
		.box {
			display: none;
			visibility: hidden;
			layout-type: row;
			position-type: self-directed;
			z-index: 3;
			opacity: 50%;
			width: 40px;
			height: 25%;
			left: 2s;
			top: stretch(3);
			min-width: auto;
			background-color: #ff0000;
			color: rgb(0, 0, 255);
			font-size: 20;
		}
	`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	r := s.Rules()[0].ID

	check := func(name string, got, want any) {
		t.Helper()
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", name, diff)
		}
	}
	d, ok := s.Display.RuleValue(r)
	if !ok {
		t.Fatal("display not declared")
	}
	check("display", d, DisplayNone)
	vis, _ := s.Visibility.RuleValue(r)
	check("visibility", vis, Hidden)
	lt, _ := s.LayoutType.RuleValue(r)
	check("layout-type", lt, LayoutRow)
	pt, _ := s.PositionType.RuleValue(r)
	check("position-type", pt, SelfDirected)
	z, _ := s.ZIndex.RuleValue(r)
	check("z-index", z, 3)
	op, _ := s.Opacity.RuleValue(r)
	check("opacity", op, Opacity(0.5))
	w, _ := s.Width.RuleValue(r)
	check("width", w, Pixels(40))
	h, _ := s.Height.RuleValue(r)
	check("height", h, Percentage(25))
	l, _ := s.Left.RuleValue(r)
	check("left", l, Stretch(2))
	top, _ := s.Top.RuleValue(r)
	check("top", top, Stretch(3))
	mw, _ := s.MinWidth.RuleValue(r)
	check("min-width", mw, Auto)
	bg, _ := s.BackgroundColor.RuleValue(r)
	check("background-color", bg, Color{1, 0, 0, 1})
	fc, _ := s.FontColor.RuleValue(r)
	check("color", fc, Color{0, 0, 1, 1})
	fs, _ := s.FontSize.RuleValue(r)
	check("font-size", fs, Pixels(20))
}

func TestParseThemeShorthands(t *testing.T) {
	s := NewStyle()
	diags := s.ParseTheme(`
		a { space: 1px 2px 3px; child-space: 5px; size: 10px 20px; border-radius: 1px 2px 3px 4px; }
		b { border: solid 2px red; outline: #00ff00; }
	`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	a, b := s.Rules()[0].ID, s.Rules()[1].ID

	get := func(set *StyleSet[Units], r RuleID) Units {
		u, _ := set.RuleValue(r)
		return u
	}
	got := []Units{
		get(&s.Top.StyleSet, a), get(&s.Right.StyleSet, a), get(&s.Bottom.StyleSet, a), get(&s.Left.StyleSet, a),
		get(&s.ChildTop, a), get(&s.ChildLeft, a),
		get(&s.Width.StyleSet, a), get(&s.Height.StyleSet, a),
		get(&s.BorderTopLeftRadius.StyleSet, a), get(&s.BorderTopRightRadius.StyleSet, a),
		get(&s.BorderBottomRightRadius.StyleSet, a), get(&s.BorderBottomLeftRadius.StyleSet, a),
		get(&s.BorderWidth.StyleSet, b),
	}
	want := []Units{
		Pixels(1), Pixels(2), Pixels(3), Pixels(2),
		Pixels(5), Pixels(5),
		Pixels(10), Pixels(20),
		Pixels(1), Pixels(2), Pixels(3), Pixels(4),
		Pixels(2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("units (-want +got):\n%s", diff)
	}
	if c, _ := s.BorderColor.RuleValue(b); c != (Color{1, 0, 0, 1}) {
		t.Errorf("border color = %v", c)
	}
	if c, _ := s.OutlineColor.RuleValue(b); c != (Color{0, 1, 0, 1}) {
		t.Errorf("outline color = %v", c)
	}
	if _, ok := s.OutlineWidth.RuleValue(b); ok {
		t.Error("outline without width set a width")
	}
}

func TestParseThemeShorthandAllOrNone(t *testing.T) {
	type setFn func(s *Style, r RuleID) bool
	units := func(set func(s *Style) *StyleSet[Units]) setFn {
		return func(s *Style, r RuleID) bool { _, ok := set(s).RuleValue(r); return ok }
	}
	colors := func(set func(s *Style) *StyleSet[Color]) setFn {
		return func(s *Style, r RuleID) bool { _, ok := set(s).RuleValue(r); return ok }
	}
	tests := []struct {
		name     string
		decl     string
		channels map[string]setFn
	}{
		{"border", "border: 2px red bogus", map[string]setFn{
			"border-width": units(func(s *Style) *StyleSet[Units] { return &s.BorderWidth.StyleSet }),
			"border-color": colors(func(s *Style) *StyleSet[Color] { return &s.BorderColor.StyleSet }),
		}},
		{"space", "space: 1px 2px foo", map[string]setFn{
			"top":    units(func(s *Style) *StyleSet[Units] { return &s.Top.StyleSet }),
			"right":  units(func(s *Style) *StyleSet[Units] { return &s.Right.StyleSet }),
			"bottom": units(func(s *Style) *StyleSet[Units] { return &s.Bottom.StyleSet }),
			"left":   units(func(s *Style) *StyleSet[Units] { return &s.Left.StyleSet }),
		}},
		{"size", "size: 3px 4px 5px", map[string]setFn{
			"width":  units(func(s *Style) *StyleSet[Units] { return &s.Width.StyleSet }),
			"height": units(func(s *Style) *StyleSet[Units] { return &s.Height.StyleSet }),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStyle()
			diags := s.ParseTheme(".b { " + tt.decl + "; opacity: 0.5; }")
			if len(diags) != 1 || diags[0].Property != tt.name {
				t.Fatalf("diagnostics = %v, want one for %s", diags, tt.name)
			}
			r := s.Rules()[0].ID
			for ch, isSet := range tt.channels {
				if isSet(s, r) {
					t.Errorf("%s set by invalid %s shorthand", ch, tt.name)
				}
			}
			if o, ok := s.Opacity.RuleValue(r); !ok || o != 0.5 {
				t.Errorf("opacity = %v, %v; valid sibling declaration lost", o, ok)
			}
		})
	}
}

func TestParseThemeTransform(t *testing.T) {
	s := NewStyle()
	if diags := s.ParseTheme(`a { transform: translate(10px, 5px) scale(2) rotate(90deg); }`); len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	tr, _ := s.Transform.RuleValue(s.Rules()[0].ID)
	if tr.TranslateX != 10 || tr.TranslateY != 5 || tr.ScaleX != 2 || tr.ScaleY != 2 {
		t.Errorf("transform = %+v", tr)
	}
	if math.Abs(tr.Rotate-math.Pi/2) > 1e-9 {
		t.Errorf("rotate = %v", tr.Rotate)
	}
}

func TestParseThemeDiagnostics(t *testing.T) {
	s := NewStyle()
	diags := s.ParseTheme(`a {
	width: 10px;
	bogus: 1;
	height: 10em;
	opacity: ;
	--custom: 1;
	transition: width;
}
@media screen { b { width: 1px; } }
c { z-index: 1.5; }
`)
	if len(s.Rules()) != 2 {
		t.Errorf("rules = %d, want 2 (at-rule contents skipped)", len(s.Rules()))
	}
	var props []string
	for _, d := range diags {
		props = append(props, d.Property)
	}
	want := []string{"bogus", "height", "opacity", "--custom", "transition", "z-index"}
	if diff := cmp.Diff(want, props); diff != "" {
		t.Errorf("diagnostic properties (-want +got):\n%s", diff)
	}
	if diags[0].Line != 3 {
		t.Errorf("line of bogus = %d, want 3", diags[0].Line)
	}
	if !strings.Contains(diags[0].String(), "unknown property") {
		t.Errorf("String() = %q", diags[0].String())
	}
	// The valid declaration in the rule survives.
	if w, ok := s.Width.RuleValue(s.Rules()[0].ID); !ok || w != Pixels(10) {
		t.Errorf("width = %v, %v", w, ok)
	}
	if diff := cmp.Diff(diags, s.Diagnostics()); diff != "" {
		t.Errorf("Diagnostics() (-want +got):\n%s", diff)
	}
}

func TestParseThemeTransition(t *testing.T) {
	s := NewStyle()
	diags := s.ParseTheme(`a { transition: opacity 200ms ease-in 50ms, border 1s; }`)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	r := s.Rules()[0].ID
	tmpl, ok := s.Opacity.transitions[r]
	if !ok {
		t.Fatal("no opacity transition")
	}
	if tmpl.clock.duration != 200*time.Millisecond || tmpl.clock.delay != 50*time.Millisecond || tmpl.clock.timing != EaseIn {
		t.Errorf("clock = %+v", *tmpl.clock)
	}
	if _, ok := s.BorderWidth.transitions[r]; !ok {
		t.Error("border shorthand did not cover border-width")
	}
	if _, ok := s.BorderColor.transitions[r]; !ok {
		t.Error("border shorthand did not cover border-color")
	}
}

func TestSetStyleInline(t *testing.T) {
	cx := NewContext()
	e := addTo(cx, RootEntity, nil)
	if err := cx.SetStyle(e, "width", "42px"); err != nil {
		t.Fatal(err)
	}
	if w, ok := cx.style.Width.Inline(e); !ok || w != Pixels(42) {
		t.Errorf("inline width = %v, %v", w, ok)
	}
	if err := cx.SetStyle(e, "width", "huge"); err == nil {
		t.Error("bad value accepted")
	}
	if err := cx.SetStyle(e, "nope", "1px"); err == nil {
		t.Error("unknown property accepted")
	}
	if err := cx.SetStyle(e, "transition", "width 1s"); err == nil {
		t.Error("inline transition accepted")
	}
}

func TestClearRulesKeepsInline(t *testing.T) {
	s := NewStyle()
	e := newEntity(1, 0)
	s.Width.Insert(e, Pixels(5))
	s.ParseTheme(`* { width: 1px; }`)
	s.ClearRules()
	if len(s.Rules()) != 0 || len(s.Diagnostics()) != 0 {
		t.Error("rules survived ClearRules")
	}
	if w, _ := s.Width.Get(e); w != Pixels(5) {
		t.Errorf("inline width = %v", w)
	}
}
