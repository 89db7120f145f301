package canopy

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Font wraps an Ebitengine text/v2 face source and hands out faces per size.
type Font struct {
	source *text.GoTextFaceSource
	mu     sync.Mutex
	faces  map[float64]*text.GoTextFace
}

// LoadFont parses TrueType or OpenType data.
func LoadFont(ttf []byte) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("canopy: parse font: %w", err)
	}
	return &Font{source: source, faces: make(map[float64]*text.GoTextFace)}, nil
}

var (
	defaultFont     *Font
	defaultFontErr  error
	defaultFontOnce sync.Once
)

// DefaultFont returns the Go Regular font, parsed once.
func DefaultFont() *Font {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = LoadFont(goregular.TTF)
	})
	if defaultFontErr != nil {
		panic("canopy: default font: " + defaultFontErr.Error())
	}
	return defaultFont
}

// Face returns the face of the given pixel size.
func (f *Font) Face(size float64) *text.GoTextFace {
	f.mu.Lock()
	defer f.mu.Unlock()
	face, ok := f.faces[size]
	if !ok {
		face = &text.GoTextFace{Source: f.source, Size: size}
		f.faces[size] = face
	}
	return face
}

// LineHeight returns the distance between baselines at size.
func (f *Font) LineHeight(size float64) float64 {
	m := f.Face(size).Metrics()
	return m.HAscent + m.HDescent + m.HLineGap
}

// Measure returns the rendered size of s at size.
func (f *Font) Measure(s string, size float64) (w, h float64) {
	return text.Measure(s, f.Face(size), f.LineHeight(size))
}
