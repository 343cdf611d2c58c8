package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/metrics"
	"github.com/flora-ssg/flora/internal/server"
	"github.com/flora-ssg/flora/internal/site"
)

const (
	version     = "0.1.0"
	defaultPort = 4000
)

var CLI struct {
	Version kong.VersionFlag `help:"Show the version of Flora."`

	Init struct {
		ProjectDir string `arg:"" optional:"" default:"." help:"The directory of the project."`
	} `cmd:"" help:"Initialize a basic site."`

	Build struct {
		ProjectDir string `arg:"" optional:"" default:"." help:"The directory of the project."`
		Drafts     bool   `short:"d" help:"Include drafts in the site."`
	} `cmd:"" help:"Build the static site."`

	Clean struct {
		ProjectDir string `arg:"" optional:"" default:"." help:"The directory of the project."`
	} `cmd:"" help:"Remove the local build of the static site."`

	Serve struct {
		ProjectDir          string `arg:"" optional:"" default:"." help:"The directory of the project."`
		Drafts              bool   `short:"d" help:"Include drafts in the site."`
		Port                int    `short:"p" help:"The port to serve the site on."`
		AutoRebuild         bool   `short:"r" help:"Rebuild any time a file changes."`
		DisableImageRebuild bool   `short:"I" help:"Do not rebuild images to accelerate rebuilds."`
	} `cmd:"" help:"Build and serve the static site locally."`

	Verbose bool   `short:"v" help:"Provide more detailed information in the logs."`
	LogFile string `help:"The file to write logs to (by default, logs are written in stderr)."`
	NoColor bool   `help:"Disable colors in the logs."`
}

func main() {
	// A .env file can provide defaults such as FLORA_PORT.
	godotenv.Load()

	// Running without a subcommand prints the help and exits cleanly.
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"--help"}
	}

	parser, err := kong.New(&CLI,
		kong.Name("flora"),
		kong.Description("Build/serve a static site."),
		kong.Vars{"version": fmt.Sprintf("flora, version %s", version)},
	)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	adapter := errors.NewCLIAdapter(setupLogging())

	switch kctx.Command() {
	case "init", "init <project-dir>":
		adapter.HandleError(runInit(CLI.Init.ProjectDir))
	case "build", "build <project-dir>":
		adapter.HandleError(runBuild(CLI.Build.ProjectDir, CLI.Build.Drafts))
	case "clean", "clean <project-dir>":
		adapter.HandleError(runClean(CLI.Clean.ProjectDir))
	case "serve", "serve <project-dir>":
		adapter.HandleError(runServe(CLI.Serve.ProjectDir))
	}
}

// setupLogging installs the process-wide logger and returns it for the CLI
// error adapter.
func setupLogging() *slog.Logger {
	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	if CLI.LogFile != "" {
		file, err := os.OpenFile(CLI.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %s\n", CLI.LogFile, err)
			os.Exit(errors.ExitGeneral)
		}
		out = file
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func runInit(projectDir string) error {
	// Refuse to initialize over an existing directory or file to avoid
	// destroying something by accident.
	if _, err := os.Stat(projectDir); err == nil {
		return errors.FileOrDirNotFound("Cannot initialize: '%s' already exists.", projectDir)
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot create directory '%s'.", projectDir))
	}
	gen, err := site.New(projectDir)
	if err != nil {
		return err
	}
	return gen.Init()
}

func runBuild(projectDir string, drafts bool) error {
	gen, err := site.New(projectDir)
	if err != nil {
		return err
	}
	return gen.Build(site.BuildOptions{IncludeDrafts: drafts})
}

func runClean(projectDir string) error {
	gen, err := site.New(projectDir)
	if err != nil {
		return err
	}
	return gen.Clean()
}

func runServe(projectDir string) error {
	gen, err := site.New(projectDir)
	if err != nil {
		return err
	}
	gen.SetRecorder(metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(gen, servePort())
	return srv.Serve(ctx, server.Options{
		IncludeDrafts:       CLI.Serve.Drafts,
		DisableImageRebuild: CLI.Serve.DisableImageRebuild,
		AutoRebuild:         CLI.Serve.AutoRebuild,
	})
}

// servePort resolves the port: the flag wins, then FLORA_PORT, then the
// default.
func servePort() int {
	if CLI.Serve.Port != 0 {
		return CLI.Serve.Port
	}
	if env := os.Getenv("FLORA_PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil {
			return port
		}
		slog.Warn("Ignoring invalid FLORA_PORT value", "value", env)
	}
	return defaultPort
}
