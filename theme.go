package canopy

import (
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// AddTheme adds a stylesheet given as source text and reloads every style.
// Themes are parsed in the order they were added, before stylesheet files.
// Problems inside the stylesheet do not fail the call; see
// Style().Diagnostics.
func (cx *Context) AddTheme(css string) error {
	cx.themes = append(cx.themes, css)
	return cx.ReloadStyles()
}

// AddStylesheet adds a stylesheet file and reloads every style. The file is
// read again on each reload.
func (cx *Context) AddStylesheet(path string) error {
	cx.stylesheets = append(cx.stylesheets, path)
	return cx.ReloadStyles()
}

// RemoveUserThemes forgets the themes added with AddTheme. Stylesheet files
// stay registered.
func (cx *Context) RemoveUserThemes() error {
	cx.themes = nil
	if len(cx.stylesheets) == 0 {
		cx.style.ClearRules()
		return nil
	}
	return cx.ReloadStyles()
}

// ReloadStyles drops every rule and parses the themes and stylesheet files
// again. Unreadable files are skipped; their errors are combined in the
// result.
func (cx *Context) ReloadStyles() error {
	if len(cx.themes) == 0 && len(cx.stylesheets) == 0 {
		return ErrNoStylesheet
	}
	cx.style.ClearRules()

	var errs error
	ndiag := 0
	for _, src := range cx.themes {
		ndiag += len(cx.style.ParseTheme(src))
	}
	for _, path := range cx.stylesheets {
		b, err := os.ReadFile(path)
		if err != nil {
			errs = multierr.Append(errs, &ResourceError{Op: "read stylesheet", Path: path, Err: err})
			continue
		}
		ndiag += len(cx.style.ParseTheme(string(b)))
	}

	cx.log.Debug("styles reloaded",
		zap.Int("rules", len(cx.style.Rules())),
		zap.Int("diagnostics", ndiag),
		zap.Int("errors", len(multierr.Errors(errs))),
	)
	if errs != nil {
		cx.log.Warn("stylesheet reload incomplete", zap.Error(errs))
	}
	return errs
}
