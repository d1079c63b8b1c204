// Aventuro plays Esperanto text adventures from binary .avt files, source
// files or Lua scripts.
// Usage: aventuro [--version] [--plain] [--script <file>] [--trace] [--config <file>] <game>
package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/aventuro/cli"
	"github.com/nathoo/aventuro/engine"
	"github.com/nathoo/aventuro/internal/config"
	"github.com/nathoo/aventuro/internal/logging"
	"github.com/nathoo/aventuro/loader"
	"github.com/nathoo/aventuro/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: aventuro [--version] [--plain] [--script <file>] [--trace] [--config <file>] <game>\n"

// delayPause is how long the plain player waits before a delayed message.
const delayPause = time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	plain := false
	trace := false
	var gamePath, scriptFile, configFile string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("aventuro %s (commit %s, built %s)\n", version, commit, date)
			return 0
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script", "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a file path\n", args[i])
				return 1
			}
			if args[i] == "--script" {
				scriptFile = args[i+1]
			} else {
				configFile = args[i+1]
			}
			i++
		default:
			if gamePath == "" {
				gamePath = args[i]
			}
		}
	}

	if gamePath == "" {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	def, err := loader.Load(gamePath, loader.WithLogger(logger))
	if err != nil {
		logger.Error("loading game", zap.String("path", gamePath), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		return 1
	}

	eng := engine.New(def,
		engine.WithLogger(logger),
		engine.WithSeed(cfg.Game.Seed),
		engine.WithMaxCarryWeight(cfg.Game.MaxCarryWeight),
	)
	trace = trace || cfg.UI.Trace

	newCLI := func() *cli.CLI {
		c := cli.New(eng)
		c.Log = logger
		c.SaveDir = cfg.Game.SaveDir
		c.Width = cfg.UI.WrapWidth
		c.Trace = trace
		return c
	}

	// Script mode: read commands from the file and echo them.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			logger.Error("opening script", zap.String("path", scriptFile), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			return 1
		}
		defer f.Close()
		c := newCLI()
		c.In = f
		c.EchoInput = true
		c.Run()
		return 0
	}

	// Use the plain CLI if asked to or stdout is not a terminal.
	if plain || cfg.UI.Plain || !isTerminal() {
		c := newCLI()
		c.Pause = delayPause
		c.Run()
		return 0
	}

	if err := tui.Run(eng, tui.Options{SaveDir: cfg.Game.SaveDir, Trace: trace, Log: logger}); err != nil {
		logger.Error("running tui", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// isTerminal reports whether stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
