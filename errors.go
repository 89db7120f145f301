package canopy

import "errors"

var (
	// ErrNoStylesheet is returned by ReloadStyles when neither themes nor
	// stylesheet files are registered.
	ErrNoStylesheet = errors.New("canopy: no stylesheet registered")

	// ErrImageNotLoaded is returned by Image while a path is unknown or its
	// asynchronous load has not finished.
	ErrImageNotLoaded = errors.New("canopy: image not loaded")
)

// ResourceError records a failed file operation and the path it was on.
type ResourceError struct {
	Op   string // "load image", "read stylesheet", ...
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return "canopy: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *ResourceError) Unwrap() error { return e.Err }
