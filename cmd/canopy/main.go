package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/phanxgames/canopy"
)

const appName = "canopy"

type logKey struct{}

func loggerFrom(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(logKey{}).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// initializeAppContext builds the logger once flags are parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	lc := canopy.LoggingConfig{Level: cmd.String("log-level"), Format: cmd.String("log-format")}
	log, err := lc.NewLogger()
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	log = log.Named(appName)
	log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	return context.WithValue(ctx, logKey{}, log), nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) error {
	// Sync fails on terminals; nothing useful can be done about it.
	_ = loggerFrom(ctx).Sync()
	return nil
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            appName,
		Usage:           "inspect and preview canopy stylesheets",
		Version:         runtime.Version(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log `LEVEL` (none, debug, info, warn, error)"},
			&cli.StringFlag{Name: "log-format", Value: "console", Usage: "log `FORMAT` (console or json)"},
		},
		Commands: []*cli.Command{
			{
				Name:         "lint",
				Usage:        "Parses stylesheets and reports skipped rules and declarations",
				ArgsUsage:    "FILE...",
				OnUsageError: usageErrorHandler,
				Action:       runLint,
			},
			{
				Name:         "rules",
				Usage:        "Lists the rules of stylesheets in cascade order",
				ArgsUsage:    "FILE...",
				OnUsageError: usageErrorHandler,
				Action:       runRules,
			},
			{
				Name:         "config",
				Usage:        "Validates a run configuration and prints the effective values",
				ArgsUsage:    "FILE",
				OnUsageError: usageErrorHandler,
				Action:       runConfig,
			},
			{
				Name:         "preview",
				Usage:        "Opens a window with sample widgets styled by the given stylesheets",
				ArgsUsage:    "FILE...",
				OnUsageError: usageErrorHandler,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load run configuration from `FILE` (YAML)"},
					&cli.StringFlag{Name: "script", Usage: "run the YAML test `SCRIPT` and exit when it is done"},
				},
				Action: runPreview,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func readSheets(cmd *cli.Command) (map[string]string, []string, error) {
	if cmd.NArg() == 0 {
		return nil, nil, fmt.Errorf("no stylesheet has been specified")
	}
	sheets := make(map[string]string, cmd.NArg())
	var (
		names []string
		err   error
	)
	for _, name := range cmd.Args().Slice() {
		b, er := os.ReadFile(name)
		if er != nil {
			err = multierr.Append(err, er)
			continue
		}
		sheets[name] = string(b)
		names = append(names, name)
	}
	return sheets, names, err
}

func runLint(ctx context.Context, cmd *cli.Command) error {
	log := loggerFrom(ctx).Named("lint")
	sheets, names, err := readSheets(cmd)
	total := 0
	for _, name := range names {
		diags := canopy.NewStyle().ParseTheme(sheets[name])
		log.Debug("Parsed stylesheet", zap.String("file", name), zap.Int("diagnostics", len(diags)))
		for _, d := range diags {
			fmt.Fprintf(cmd.Root().Writer, "%s:%s\n", name, d)
		}
		total += len(diags)
	}
	if total > 0 {
		err = multierr.Append(err, fmt.Errorf("%d problem(s) found", total))
	}
	return err
}

func runRules(ctx context.Context, cmd *cli.Command) error {
	sheets, names, err := readSheets(cmd)
	style := canopy.NewStyle()
	style.SetLogger(loggerFrom(ctx).Named("style"))
	for _, name := range names {
		style.ParseTheme(sheets[name])
	}
	printRules(cmd.Root().Writer, style)
	return err
}

func printRules(w io.Writer, style *canopy.Style) {
	for _, r := range style.CascadeOrder() {
		s := r.Specificity
		fmt.Fprintf(w, "(%d,%d,%d) line %-4d %s\n", s>>16, s>>8&0xff, s&0xff, r.Line, r)
	}
}

func runConfig(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("expected exactly one configuration file")
	}
	cfg, err := canopy.LoadRunConfig(cmd.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "%+v\n", cfg)
	return nil
}
