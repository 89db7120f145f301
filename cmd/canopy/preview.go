package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/phanxgames/canopy"
)

const previewTheme = `
window { layout-type: column; child-space: 24px; row-between: 12px; background-color: #f4f4f4; }
button { width: 160px; height: 36px; background-color: #3b82f6; border: 1px solid #1d4ed8; transition: background-color 150ms; }
button:hover { background-color: #2563eb; }
button:active { transform: scale(0.97); }
button:focus-visible { outline: 2px solid #f59e0b; outline-offset: 2px; }
button:disabled { opacity: 0.5; }
label { width: 1s; height: 1s; font-color: white; font-size: 16px; }
.status { width: 1s; height: 24px; }
.status > label { font-color: #333; }
`

// buildPreview adds a handful of widgets that cover the common selectors.
func buildPreview(cx *canopy.Context) {
	var status *canopy.Label
	setStatus := func(s string) func(cx *canopy.Context) {
		return func(cx *canopy.Context) {
			status.Text = s
			cx.RequestRedraw()
		}
	}
	canopy.NewButton(cx, "Primary", setStatus("primary pressed"))
	canopy.NewButton(cx, "Secondary", setStatus("secondary pressed"))
	off := canopy.NewButton(cx, "Disabled", setStatus("unreachable"))
	cx.SetDisabled(off, true)

	row := cx.Add(nil, func(cx *canopy.Context) {
		l := canopy.NewLabel(cx, "ready")
		status, _ = canopy.ViewAs[*canopy.Label](cx, l)
	})
	cx.AddClass(row, "status")
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	log := loggerFrom(ctx).Named("preview")

	cfg := canopy.DefaultRunConfig()
	cfg.Title = "canopy preview"
	if name := cmd.String("config"); name != "" {
		var err error
		if cfg, err = canopy.LoadRunConfig(name); err != nil {
			return err
		}
	}
	cfg.Stylesheets = append(cfg.Stylesheets, cmd.Args().Slice()...)
	if s := cmd.String("script"); s != "" {
		cfg.TestScript = s
		cfg.ExitAfterScript = true
	}
	cfg.Logging.Level = cmd.String("log-level")
	cfg.Logging.Format = cmd.String("log-format")

	cx := canopy.NewContext()
	if err := cx.AddTheme(previewTheme); err != nil {
		return fmt.Errorf("preview theme: %w", err)
	}
	buildPreview(cx)

	log.Info("Opening preview", zap.Strings("stylesheets", cfg.Stylesheets))
	return canopy.Run(canopy.NewApplication(cx), cfg)
}
