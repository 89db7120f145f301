package canopy

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// ImageRetention decides when an unobserved image is dropped.
type ImageRetention uint8

const (
	ImageDropWhenUnused ImageRetention = iota // dropped once no entity observes it
	ImageRetainForever                        // kept until the context goes away
)

// ImageReady is sent directly to every entity observing a path once its
// asynchronous load finished, successfully or not.
type ImageReady struct {
	Path string
	Err  error
}

type imageEntry struct {
	img       *ebiten.Image
	err       error
	loading   bool
	retention ImageRetention
	observers map[Entity]struct{}
}

type resourceManager struct {
	cx     *Context
	images map[string]*imageEntry
}

func newResourceManager(cx *Context) *resourceManager {
	return &resourceManager{cx: cx, images: make(map[string]*imageEntry)}
}

func (r *resourceManager) entry(path string) *imageEntry {
	en, ok := r.images[path]
	if !ok {
		en = &imageEntry{observers: make(map[Entity]struct{})}
		r.images[path] = en
	}
	return en
}

func decodeImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &ResourceError{Op: "load image", Path: path, Err: err}
	}
	return img, nil
}

// LoadImage decodes the image at path on the calling goroutine and registers
// it under path.
func (cx *Context) LoadImage(path string) error {
	img, err := decodeImage(path)
	if err != nil {
		cx.log.Warn("image load failed", zap.String("path", path), zap.Error(err))
		return err
	}
	cx.AddImage(path, img)
	return nil
}

// LoadImageAsync decodes the image at path on a new goroutine. Entities that
// look the path up with Image before it arrives receive an ImageReady event.
func (cx *Context) LoadImageAsync(path string) {
	en := cx.resources.entry(path)
	if en.loading {
		return
	}
	en.loading = true
	p := cx.Proxy()
	go func() {
		img, err := decodeImage(path)
		p.emitInternal(imageLoaded{path: path, img: img, err: err})
	}()
}

// AddImage registers an already decoded image under path.
func (cx *Context) AddImage(path string, img image.Image) {
	en := cx.resources.entry(path)
	en.img = ebiten.NewImageFromImage(img)
	en.err = nil
	cx.style.needsRedraw = true
}

// Image returns the image registered under path and records the current
// entity as an observer of it. It returns ErrImageNotLoaded while the path
// is unknown or still loading.
func (cx *Context) Image(path string) (*ebiten.Image, error) {
	en := cx.resources.entry(path)
	en.observers[cx.current] = struct{}{}
	switch {
	case en.err != nil:
		return nil, en.err
	case en.img == nil:
		return nil, ErrImageNotLoaded
	}
	return en.img, nil
}

// SetImageRetention sets the retention policy of path.
func (cx *Context) SetImageRetention(path string, policy ImageRetention) {
	cx.resources.entry(path).retention = policy
}

// finishLoad runs on the UI goroutine when a loader goroutine is done.
func (r *resourceManager) finishLoad(msg imageLoaded) {
	en := r.entry(msg.path)
	en.loading = false
	if msg.err != nil {
		en.err = msg.err
		r.cx.log.Warn("image load failed", zap.String("path", msg.path), zap.Error(msg.err))
	} else {
		en.img = ebiten.NewImageFromImage(msg.img)
		en.err = nil
	}
	for e := range en.observers {
		r.cx.EmitTo(e, ImageReady{Path: msg.path, Err: msg.err})
	}
}

func (r *resourceManager) removeObserver(e Entity) {
	for _, en := range r.images {
		delete(en.observers, e)
	}
}

// collectGarbage drops images nobody observes unless they are retained.
// Returns the number of dropped images.
func (r *resourceManager) collectGarbage() int {
	n := 0
	for path, en := range r.images {
		if en.loading || en.retention == ImageRetainForever || len(en.observers) > 0 {
			continue
		}
		if en.img != nil {
			en.img.Deallocate()
		}
		delete(r.images, path)
		n++
	}
	if n > 0 {
		r.cx.log.Debug("images dropped", zap.Int("count", n))
	}
	return n
}
