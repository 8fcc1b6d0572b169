package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	xunit "github.com/billrob/xunit"
	"github.com/billrob/xunit/config"
	"github.com/billrob/xunit/engine/gotest"
	"github.com/billrob/xunit/exitcodes"
	"github.com/billrob/xunit/flags"
	"github.com/billrob/xunit/host"
	"github.com/billrob/xunit/service"
	"github.com/billrob/xunit/types"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "xunit-bridge"
	app.Usage = "Bridge between a test runner UI and an xunit execution engine"
	app.Description = "xunit-bridge discovers and runs tests in a compiled test assembly"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if xunit.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if xunit.IsTestFailureError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	// Start telemetry
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		slog.Error("Failed to setup open telemetry", "message", err)
		os.Exit(exitcodes.RuntimeErr)
	}
	defer otelShutdown()

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "message", err)
	}
}

func run(ctx *cli.Context) error {
	if err := flags.CheckRequired(ctx); err != nil {
		return xunit.NewRuntimeError(fmt.Errorf("missing required flags: %w", err))
	}

	assembly, err := filepath.Abs(ctx.String(flags.Assembly.Name))
	if err != nil {
		return xunit.NewRuntimeError(fmt.Errorf("failed to resolve assembly path: %w", err))
	}

	cfg, err := config.Load(assembly, slog.Default())
	if err != nil {
		return xunit.NewRuntimeError(fmt.Errorf("failed to load config: %w", err))
	}

	log, err := newLogger(cfg, ctx.String(flags.LogLevel.Name))
	if err != nil {
		return xunit.NewRuntimeError(err)
	}
	slog.SetDefault(log)

	if ctx.Bool(flags.Serve.Name) {
		svc := service.New()
		svc.Start(ctx.Context)
		defer svc.Shutdown()
	}

	eng, err := gotest.New(assembly, log)
	if err != nil {
		return xunit.NewRuntimeError(fmt.Errorf("failed to create engine: %w", err))
	}

	listener := host.NewConsoleListener(log)
	runner, err := xunit.New(xunit.Config{
		AssemblyPath: assembly,
		Engine:       eng,
		Listener:     listener,
		Settings:     cfg,
		Log:          log,
	})
	if err != nil {
		return xunit.NewRuntimeError(fmt.Errorf("failed to create test runner: %w", err))
	}
	defer func() {
		if err := runner.DisposeAsync(); err != nil {
			log.Error("Failed to dispose session", "error", err)
		}
	}()

	var classSel *types.Class
	if className := ctx.String(flags.Class.Name); className != "" {
		classSel = &types.Class{Name: className}
	}

	if ctx.Bool(flags.ListOnly.Name) {
		cases, err := runner.Discover(classSel)
		if err != nil {
			return xunit.NewRuntimeError(err)
		}
		for _, tc := range cases {
			fmt.Println(tc.Name())
		}
		log.Info("Discovery complete", "cases", len(cases))
		return nil
	}

	var state types.RunState
	switch {
	case ctx.String(flags.Method.Name) != "":
		method := types.Method{
			ClassName: ctx.String(flags.Class.Name),
			Name:      ctx.String(flags.Method.Name),
		}
		state, err = runner.RunMethod(method, types.RunStateNoTests)
	case classSel != nil:
		state, err = runner.RunClass(classSel, types.RunStateNoTests)
	default:
		state, err = runner.Run(nil, types.RunStateNoTests)
	}
	if err != nil {
		return xunit.NewRuntimeError(err)
	}

	listener.Summary(state)
	log.Info("Run complete", "state", state)

	switch state {
	case types.RunStateFailure:
		return xunit.NewTestFailureError(fmt.Sprintf("run finished with state %s", state))
	case types.RunStateError:
		return xunit.NewRuntimeError(fmt.Errorf("run finished with state %s", state))
	default:
		return nil
	}
}

// newLogger builds the session logger. A --log.level flag beats the
// assembly's config side-file.
func newLogger(cfg *config.Config, flagLevel string) (*slog.Logger, error) {
	level := cfg.LogLevel()
	if flagLevel != "" {
		if err := level.UnmarshalText([]byte(flagLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", flagLevel, err)
		}
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}
